package lastfm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
	"github.com/jfmyers9/lastfm/pkg/rescache"
)

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultRateLimit is the default request rate against the API.
	// Last.fm asks clients to stay under 5 requests per second.
	DefaultRateLimit = rate.Limit(5)
)

// ResponseCache stores raw API response payloads keyed by request
// parameters. Read operations consult it before going to the network;
// cache-bypassing operations and mutations never touch it.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
}

// Config holds client configuration.
type Config struct {
	APIKey     string              // Required: Last.fm API key
	APISecret  string              // Required: Last.fm API secret
	SessionKey string              // Optional: session key for authenticated requests
	HTTPClient *http.Client        // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string              // Optional: API base URL (used for testing)
	Logger     *zerolog.Logger     // Optional: logger for debug output
	Cache      ResponseCache       // Optional: response cache (defaults to an in-memory cache)
	Registry   *flyweight.Registry // Optional: entity registry (defaults to a fresh one per client)
	RateLimit  rate.Limit          // Optional: requests per second (defaults to DefaultRateLimit)
}

// Client is the main entry point for Last.fm API operations.
//
// The client owns the entity registry: every domain object it materializes
// is canonical within that registry for the lifetime of the client.
type Client struct {
	apiKey     string
	apiSecret  string
	sessionKey string
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
	cache      ResponseCache
	registry   *flyweight.Registry
	limiter    *rate.Limiter

	auth     *AuthService
	scrobble *ScrobbleService
}

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey, APISecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("%w: APISecret is required", ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	cache := cfg.Cache
	if cache == nil {
		cache = rescache.NewMemory(rescache.MemoryConfig{})
	}

	registry := cfg.Registry
	if registry == nil {
		registry = flyweight.NewRegistry()
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		sessionKey: cfg.SessionKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger.With().Str("component", "lastfm").Logger(),
		cache:      cache,
		registry:   registry,
		limiter:    rate.NewLimiter(limit, 1),
	}

	c.auth = &AuthService{client: c}
	c.scrobble = &ScrobbleService{client: c}

	return c, nil
}

// Auth returns the authentication service.
func (c *Client) Auth() *AuthService {
	return c.auth
}

// Scrobble returns the scrobbling service.
func (c *Client) Scrobble() *ScrobbleService {
	return c.scrobble
}

// SetSessionKey sets the session key for authenticated requests.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
}

// GetSessionKey returns the current session key.
func (c *Client) GetSessionKey() string {
	return c.sessionKey
}

// HasSession reports whether a session key is set.
func (c *Client) HasSession() bool {
	return c.sessionKey != ""
}

// Registry returns the entity registry owned by this client.
func (c *Client) Registry() *flyweight.Registry {
	return c.registry
}

// requireAuth is the gate in front of every session-bound operation. It
// fails fast when no session key is set, before any request is built.
func (c *Client) requireAuth() error {
	if c.sessionKey == "" {
		return ErrAuthRequired
	}
	return nil
}

// AuthenticatedUser fetches the profile of the session's user via a signed
// user.getInfo call. The returned User carries the session-only profile
// fields (language, country, age, gender, subscriber status).
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	body, err := c.fetch(ctx, "user.getInfo", nil, callOpts{signed: true, session: true, noCache: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		User authUserData `xml:"user"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getInfo response: %w", err)
	}
	return authUserFromData(c, resp.User)
}
