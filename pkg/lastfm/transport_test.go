package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// stubAPI is an httptest-backed Last.fm API stub. Responses are keyed by
// the method parameter; requests per method are counted.
type stubAPI struct {
	t  *testing.T
	mu sync.Mutex

	server    *httptest.Server
	responses map[string]string
	handlers  map[string]func(r *http.Request) string
	calls     map[string]int
}

func newStubAPI(t *testing.T) *stubAPI {
	t.Helper()
	s := &stubAPI{
		t:         t,
		responses: make(map[string]string),
		handlers:  make(map[string]func(r *http.Request) string),
		calls:     make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse request: %v", err)
			return
		}
		method := r.FormValue("method")

		s.mu.Lock()
		s.calls[method]++
		handler := s.handlers[method]
		body, ok := s.responses[method]
		s.mu.Unlock()

		if handler != nil {
			body = handler(r)
		} else if !ok {
			t.Errorf("unexpected API method %q", method)
			body = errorXML(ErrCodeInvalidMethod, "Invalid Method")
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response body: %v", err)
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

// respond registers a static response body for a method.
func (s *stubAPI) respond(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[method] = body
}

// handle registers a per-request handler for a method.
func (s *stubAPI) handle(method string, fn func(r *http.Request) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// count returns the number of requests seen for a method.
func (s *stubAPI) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// total returns the number of requests seen across all methods.
func (s *stubAPI) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// client builds a client pointed at the stub. Tests pass a nopCache when
// they count requests, so that the response cache does not absorb fetches.
func (s *stubAPI) client(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "test-api-key"
	}
	if cfg.APISecret == "" {
		cfg.APISecret = "test-secret"
	}
	cfg.BaseURL = s.server.URL
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1000
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// nopCache disables response caching.
type nopCache struct{}

func (nopCache) Get(string) ([]byte, bool) { return nil, false }
func (nopCache) Set(string, []byte)        {}

func okXML(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?><lfm status="ok">` + inner + `</lfm>`
}

func errorXML(code int, msg string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?><lfm status="failed"><error code="%d">%s</error></lfm>`, code, msg)
}

func TestFetch_CachesReads(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("artist.getInfo", okXML(`<artist><name>Cher</name></artist>`))

	client := stub.client(t, Config{})
	ctx := context.Background()

	params := map[string]string{"artist": "Cher"}
	first, err := client.fetch(ctx, "artist.getInfo", params, callOpts{})
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := client.fetch(ctx, "artist.getInfo", params, callOpts{})
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("cached response differs from original")
	}
	if got := stub.count("artist.getInfo"); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestFetch_NoCacheBypassesCache(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("user.getRecentTracks", okXML(`<recenttracks></recenttracks>`))

	client := stub.client(t, Config{})
	ctx := context.Background()

	params := map[string]string{"user": "testuser"}
	for i := 0; i < 2; i++ {
		if _, err := client.fetch(ctx, "user.getRecentTracks", params, callOpts{noCache: true}); err != nil {
			t.Fatalf("fetch %d failed: %v", i+1, err)
		}
	}

	if got := stub.count("user.getRecentTracks"); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestFetch_ReadsUseGET(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("artist.getInfo", func(r *http.Request) string {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET request, got %s", r.Method)
		}
		if r.FormValue("api_key") != "test-api-key" {
			t.Errorf("expected api_key test-api-key, got %s", r.FormValue("api_key"))
		}
		return okXML(`<artist><name>Cher</name></artist>`)
	})

	client := stub.client(t, Config{})
	if _, err := client.fetch(context.Background(), "artist.getInfo", nil, callOpts{}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

func TestSubmit_WritesUseSignedPOST(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("library.addArtist", func(r *http.Request) string {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %s", ct)
		}
		if r.FormValue("sk") != "test-session" {
			t.Errorf("expected sk test-session, got %s", r.FormValue("sk"))
		}
		if r.FormValue("api_sig") == "" {
			t.Error("expected api_sig to be present")
		}
		return okXML(``)
	})

	client := stub.client(t, Config{SessionKey: "test-session"})
	if err := client.submit(context.Background(), "library.addArtist", map[string]string{"artist": "Cher"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
}

func TestFetch_SessionWithoutKeyFailsBeforeNetwork(t *testing.T) {
	stub := newStubAPI(t)
	client := stub.client(t, Config{})

	_, err := client.fetch(context.Background(), "user.getInfo", nil, callOpts{signed: true, session: true})
	if err != ErrAuthRequired {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if stub.total() != 0 {
		t.Errorf("expected no requests, got %d", stub.total())
	}
}

func TestFetch_RetriesTemporaryError(t *testing.T) {
	stub := newStubAPI(t)
	attempts := 0
	stub.handle("artist.getInfo", func(r *http.Request) string {
		attempts++
		if attempts < 2 {
			return errorXML(ErrCodeTempUnavailable, "Service Temporarily Unavailable")
		}
		return okXML(`<artist><name>Cher</name></artist>`)
	})

	client := stub.client(t, Config{})
	if _, err := client.fetch(context.Background(), "artist.getInfo", nil, callOpts{}); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestFetch_PermanentErrorNotRetried(t *testing.T) {
	stub := newStubAPI(t)
	stub.respond("artist.getInfo", errorXML(ErrCodeInvalidParameters, "Invalid parameters"))

	client := stub.client(t, Config{})
	_, err := client.fetch(context.Background(), "artist.getInfo", nil, callOpts{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "error 6") {
		t.Errorf("expected error 6, got %v", err)
	}
	if got := stub.count("artist.getInfo"); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestResponseCacheKey_Deterministic(t *testing.T) {
	a := responseCacheKey(map[string]string{"method": "user.getInfo", "user": "rj", "api_key": "k"})
	b := responseCacheKey(map[string]string{"user": "rj", "api_key": "k", "method": "user.getInfo"})
	if a != b {
		t.Errorf("cache keys differ: %q vs %q", a, b)
	}
	want := "api_key=k&method=user.getInfo&user=rj"
	if a != want {
		t.Errorf("expected %q, got %q", want, a)
	}
}
