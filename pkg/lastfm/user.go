package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
	"github.com/jfmyers9/lastfm/pkg/lazylist"
	"github.com/jfmyers9/lastfm/pkg/memo"
)

// User represents a Last.fm user, identified by name.
//
// Collection accessors (Friends, TopTracks, PastEvents, ...) are memoized
// per instance: the first read fetches, later reads return the cached
// result until a mutation invalidates it. Accessors named Get* always
// build a fresh listing.
type User struct {
	client  *Client
	name    string
	props   memo.Store
	library *Library

	mu       sync.Mutex
	realName string
	url      string
	image    map[string]string
	stats    Stats

	// Session-only profile fields, populated by AuthenticatedUser.
	language   string
	country    string
	age        int
	gender     string
	subscriber bool
}

// User returns the canonical User for the given name.
func (c *Client) User(name string) (*User, error) {
	key, err := flyweight.NewKey("user", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return flyweight.GetOrCreate(c.registry, key, func() *User {
		u := &User{client: c, name: name}
		u.library = &Library{client: c, user: u}
		return u
	}), nil
}

// userData is a user record as returned inside friend/neighbour listings.
type userData struct {
	Name     string      `xml:"name"`
	RealName string      `xml:"realname"`
	URL      string      `xml:"url"`
	Match    string      `xml:"match"`
	Image    []imageData `xml:"image"`
}

func userFromData(c *Client, d userData) (*User, error) {
	u, err := c.User(d.Name)
	if err != nil {
		return nil, err
	}
	u.absorb(d)
	return u, nil
}

func (u *User) absorb(d userData) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if d.RealName != "" {
		u.realName = d.RealName
	}
	if d.URL != "" {
		u.url = d.URL
	}
	if img := imagesFromData(d.Image); img != nil {
		u.image = img
	}
	if m := atof(d.Match); m != 0 {
		u.stats.Match = m
	}
}

// authUserData is the user record returned by a signed user.getInfo call.
type authUserData struct {
	Name       string `xml:"name"`
	RealName   string `xml:"realname"`
	URL        string `xml:"url"`
	Lang       string `xml:"lang"`
	Country    string `xml:"country"`
	Age        string `xml:"age"`
	Gender     string `xml:"gender"`
	Subscriber string `xml:"subscriber"`
	Playcount  string `xml:"playcount"`
}

func authUserFromData(c *Client, d authUserData) (*User, error) {
	u, err := c.User(d.Name)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if d.RealName != "" {
		u.realName = d.RealName
	}
	if d.URL != "" {
		u.url = d.URL
	}
	u.language = d.Lang
	u.country = d.Country
	u.age = atoi(d.Age)
	u.gender = d.Gender
	u.subscriber = bool01(d.Subscriber)
	if n := atoi(d.Playcount); n != 0 {
		u.stats.PlayCount = n
	}
	return u, nil
}

// Name returns the user's name.
func (u *User) Name() string { return u.name }

// RealName returns the user's real name, if known.
func (u *User) RealName() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.realName
}

// URL returns the user's page URL, if known.
func (u *User) URL() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.url
}

// Image returns the user's images by size.
func (u *User) Image() map[string]string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.image
}

// Stats returns the user's statistics.
func (u *User) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats
}

// Language returns the user's language. Session-only: requires an
// authenticated session and is populated by AuthenticatedUser.
func (u *User) Language() (string, error) {
	if err := u.client.requireAuth(); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.language, nil
}

// Country returns the user's country. Session-only.
func (u *User) Country() (string, error) {
	if err := u.client.requireAuth(); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.country, nil
}

// Age returns the user's age. Session-only.
func (u *User) Age() (int, error) {
	if err := u.client.requireAuth(); err != nil {
		return 0, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.age, nil
}

// Gender returns the user's gender. Session-only.
func (u *User) Gender() (string, error) {
	if err := u.client.requireAuth(); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.gender, nil
}

// Subscriber reports whether the user is a subscriber. Session-only.
func (u *User) Subscriber() (bool, error) {
	if err := u.client.requireAuth(); err != nil {
		return false, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.subscriber, nil
}

// Authenticated reports whether this user is the session's principal. It
// returns false, not an error, when no usable session exists.
func (u *User) Authenticated(ctx context.Context) (bool, error) {
	if !u.client.HasSession() {
		return false, nil
	}
	principal, err := u.client.AuthenticatedUser(ctx)
	if err != nil {
		if isAuthFailure(err) {
			return false, nil
		}
		return false, err
	}
	return u.Equal(principal), nil
}

// Library returns the user's music library.
func (u *User) Library() *Library { return u.library }

// Equal reports identity equality on user name.
func (u *User) Equal(other *User) bool {
	return other != nil && u.name == other.name
}

// Less orders users by name.
func (u *User) Less(other *User) bool {
	return other != nil && u.name < other.name
}

func (u *User) String() string {
	return fmt.Sprintf("lastfm.User(%s)", u.name)
}

// params builds request parameters addressed to this user.
func (u *User) params() map[string]string {
	return map[string]string{"user": u.name}
}

// Events returns the user's upcoming events, memoized per instance.
func (u *User) Events(ctx context.Context) ([]*Event, error) {
	return memo.Get(&u.props, "events", func() ([]*Event, error) {
		body, err := u.client.fetch(ctx, "user.getEvents", u.params(), callOpts{})
		if err != nil {
			return nil, err
		}
		var resp struct {
			Events eventsPage `xml:"events"`
		}
		if err := unwrap(body, &resp); err != nil {
			return nil, fmt.Errorf("lastfm: failed to parse user.getEvents response: %w", err)
		}
		return eventsFromData(u.client, resp.Events.Events)
	})
}

// GetPastEvents returns the user's past events as a lazy depaginated
// sequence. A limit of 0 uses the API default page size.
func (u *User) GetPastEvents(ctx context.Context, limit int) *lazylist.List[*Event] {
	return u.depaginateEvents(ctx, "user.getPastEvents", limit, callOpts{})
}

// PastEvents returns the user's past events, memoized per instance.
func (u *User) PastEvents(ctx context.Context) (*lazylist.List[*Event], error) {
	return memo.Get(&u.props, "pastEvents", func() (*lazylist.List[*Event], error) {
		return u.GetPastEvents(ctx, 0), nil
	})
}

// GetRecommendedEvents returns events recommended for the session's user.
// Requires an authenticated session; the gate runs before the first page is
// fetched.
func (u *User) GetRecommendedEvents(ctx context.Context, limit int) (*lazylist.List[*Event], error) {
	if err := u.client.requireAuth(); err != nil {
		return nil, err
	}
	return u.depaginateEvents(ctx, "user.getRecommendedEvents", limit, callOpts{signed: true, session: true}), nil
}

// RecommendedEvents returns recommended events, memoized per instance.
func (u *User) RecommendedEvents(ctx context.Context) (*lazylist.List[*Event], error) {
	if err := u.client.requireAuth(); err != nil {
		return nil, err
	}
	return memo.Get(&u.props, "recommendedEvents", func() (*lazylist.List[*Event], error) {
		return u.GetRecommendedEvents(ctx, 0)
	})
}

// depaginateEvents drives a paged events listing for this user.
func (u *User) depaginateEvents(ctx context.Context, method string, limit int, opts callOpts) *lazylist.List[*Event] {
	return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Event], error) {
		params := u.params()
		if limit > 0 {
			params["limit"] = strconv.Itoa(limit)
		}
		if pageNum > 1 {
			params["page"] = strconv.Itoa(pageNum)
		}
		body, err := u.client.fetch(ctx, method, params, opts)
		if err != nil {
			return page[*Event]{}, err
		}
		var resp struct {
			Events eventsPage `xml:"events"`
		}
		if err := unwrap(body, &resp); err != nil {
			return page[*Event]{}, fmt.Errorf("lastfm: failed to parse %s response: %w", method, err)
		}
		items, err := eventsFromData(u.client, resp.Events.Events)
		if err != nil {
			return page[*Event]{}, err
		}
		return page[*Event]{totalPages: atoi(resp.Events.TotalPages), items: items}, nil
	})
}

// GetFriends returns the user's friends. A limit of 0 uses the API default.
func (u *User) GetFriends(ctx context.Context, limit int) ([]*User, error) {
	params := u.params()
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := u.client.fetch(ctx, "user.getFriends", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Friends struct {
			Users []userData `xml:"user"`
		} `xml:"friends"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getFriends response: %w", err)
	}
	return usersFromData(u.client, resp.Friends.Users)
}

// Friends returns the user's friends, memoized per instance.
func (u *User) Friends(ctx context.Context) ([]*User, error) {
	return memo.Get(&u.props, "friends", func() ([]*User, error) {
		return u.GetFriends(ctx, 0)
	})
}

// GetNeighbours returns users with similar taste. A limit of 0 uses the API
// default.
func (u *User) GetNeighbours(ctx context.Context, limit int) ([]*User, error) {
	params := u.params()
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := u.client.fetch(ctx, "user.getNeighbours", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Neighbours struct {
			Users []userData `xml:"user"`
		} `xml:"neighbours"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getNeighbours response: %w", err)
	}
	return usersFromData(u.client, resp.Neighbours.Users)
}

// Neighbours returns the user's neighbours, memoized per instance.
func (u *User) Neighbours(ctx context.Context) ([]*User, error) {
	return memo.Get(&u.props, "neighbours", func() ([]*User, error) {
		return u.GetNeighbours(ctx, 0)
	})
}

// NearestNeighbour returns the first entry of the cached neighbour listing,
// or nil if the user has none. It never triggers a fetch beyond the one
// that populates Neighbours.
func (u *User) NearestNeighbour(ctx context.Context) (*User, error) {
	neighbours, err := u.Neighbours(ctx)
	if err != nil {
		return nil, err
	}
	if len(neighbours) == 0 {
		return nil, nil
	}
	return neighbours[0], nil
}

// Playlists returns the user's playlists, memoized per instance.
func (u *User) Playlists(ctx context.Context) ([]*Playlist, error) {
	return memo.Get(&u.props, "playlists", func() ([]*Playlist, error) {
		body, err := u.client.fetch(ctx, "user.getPlaylists", u.params(), callOpts{})
		if err != nil {
			return nil, err
		}
		var resp struct {
			Playlists struct {
				Playlists []playlistData `xml:"playlist"`
			} `xml:"playlists"`
		}
		if err := unwrap(body, &resp); err != nil {
			return nil, fmt.Errorf("lastfm: failed to parse user.getPlaylists response: %w", err)
		}
		playlists := make([]*Playlist, 0, len(resp.Playlists.Playlists))
		for _, d := range resp.Playlists.Playlists {
			p, err := playlistFromData(u.client, d, u)
			if err != nil {
				return nil, err
			}
			playlists = append(playlists, p)
		}
		return playlists, nil
	})
}

// CreatePlaylist creates a new playlist for the session's user. Requires an
// authenticated session. On success the cached playlist listing is
// invalidated so the next read includes the new playlist.
func (u *User) CreatePlaylist(ctx context.Context, title, description string) error {
	if err := u.client.requireAuth(); err != nil {
		return err
	}
	params := map[string]string{"title": title}
	if description != "" {
		params["description"] = description
	}
	if err := u.client.submit(ctx, "playlist.create", params); err != nil {
		return err
	}
	u.props.Invalidate("playlists")
	return nil
}

// LovedTracks returns the user's loved tracks, memoized per instance.
func (u *User) LovedTracks(ctx context.Context) ([]*Track, error) {
	return memo.Get(&u.props, "lovedTracks", func() ([]*Track, error) {
		body, err := u.client.fetch(ctx, "user.getLovedTracks", u.params(), callOpts{})
		if err != nil {
			return nil, err
		}
		var resp struct {
			LovedTracks struct {
				Tracks []trackData `xml:"track"`
			} `xml:"lovedtracks"`
		}
		if err := unwrap(body, &resp); err != nil {
			return nil, fmt.Errorf("lastfm: failed to parse user.getLovedTracks response: %w", err)
		}
		return tracksFromData(u.client, resp.LovedTracks.Tracks, true)
	})
}

// GetRecentTracks returns the user's recently played tracks. The listing
// changes constantly, so it bypasses the response cache and is never
// memoized. A limit of 0 uses the API default.
func (u *User) GetRecentTracks(ctx context.Context, limit int) ([]*Track, error) {
	params := u.params()
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := u.client.fetch(ctx, "user.getRecentTracks", params, callOpts{noCache: true})
	if err != nil {
		return nil, err
	}
	var resp struct {
		RecentTracks struct {
			Tracks []trackData `xml:"track"`
		} `xml:"recenttracks"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getRecentTracks response: %w", err)
	}
	return tracksFromData(u.client, resp.RecentTracks.Tracks, false)
}

// MostRecentTrack returns the most recently played track, or nil if the
// user has no recent plays.
func (u *User) MostRecentTrack(ctx context.Context) (*Track, error) {
	tracks, err := u.GetRecentTracks(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return tracks[0], nil
}

// GetTopAlbums returns the user's top albums for the given period.
func (u *User) GetTopAlbums(ctx context.Context, period Period) ([]*Album, error) {
	params := u.params()
	if period != "" {
		params["period"] = string(period)
	}
	body, err := u.client.fetch(ctx, "user.getTopAlbums", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		TopAlbums struct {
			Albums []albumData `xml:"album"`
		} `xml:"topalbums"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getTopAlbums response: %w", err)
	}
	albums := make([]*Album, 0, len(resp.TopAlbums.Albums))
	for _, d := range resp.TopAlbums.Albums {
		a, err := albumFromData(u.client, d)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, nil
}

// TopAlbums returns the user's overall top albums, memoized per instance.
func (u *User) TopAlbums(ctx context.Context) ([]*Album, error) {
	return memo.Get(&u.props, "topAlbums", func() ([]*Album, error) {
		return u.GetTopAlbums(ctx, "")
	})
}

// TopAlbum returns the user's overall top album, or nil.
func (u *User) TopAlbum(ctx context.Context) (*Album, error) {
	albums, err := u.TopAlbums(ctx)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, nil
	}
	return albums[0], nil
}

// GetTopArtists returns the user's top artists for the given period.
func (u *User) GetTopArtists(ctx context.Context, period Period) ([]*Artist, error) {
	params := u.params()
	if period != "" {
		params["period"] = string(period)
	}
	body, err := u.client.fetch(ctx, "user.getTopArtists", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		TopArtists struct {
			Artists []artistData `xml:"artist"`
		} `xml:"topartists"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getTopArtists response: %w", err)
	}
	return artistsFromData(u.client, resp.TopArtists.Artists)
}

// TopArtists returns the user's overall top artists, memoized per instance.
func (u *User) TopArtists(ctx context.Context) ([]*Artist, error) {
	return memo.Get(&u.props, "topArtists", func() ([]*Artist, error) {
		return u.GetTopArtists(ctx, "")
	})
}

// TopArtist returns the user's overall top artist, or nil.
func (u *User) TopArtist(ctx context.Context) (*Artist, error) {
	artists, err := u.TopArtists(ctx)
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, nil
	}
	return artists[0], nil
}

// GetTopTracks returns the user's top tracks for the given period.
func (u *User) GetTopTracks(ctx context.Context, period Period) ([]*Track, error) {
	params := u.params()
	if period != "" {
		params["period"] = string(period)
	}
	body, err := u.client.fetch(ctx, "user.getTopTracks", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		TopTracks struct {
			Tracks []trackData `xml:"track"`
		} `xml:"toptracks"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getTopTracks response: %w", err)
	}
	return tracksFromData(u.client, resp.TopTracks.Tracks, false)
}

// TopTracks returns the user's overall top tracks, memoized per instance.
func (u *User) TopTracks(ctx context.Context) ([]*Track, error) {
	return memo.Get(&u.props, "topTracks", func() ([]*Track, error) {
		return u.GetTopTracks(ctx, "")
	})
}

// TopTrack returns the user's overall top track, or nil.
func (u *User) TopTrack(ctx context.Context) (*Track, error) {
	tracks, err := u.TopTracks(ctx)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return tracks[0], nil
}

// GetTopTags returns the user's top tags. A limit of 0 uses the API default.
func (u *User) GetTopTags(ctx context.Context, limit int) ([]*Tag, error) {
	params := u.params()
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := u.client.fetch(ctx, "user.getTopTags", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		TopTags struct {
			Tags []tagData `xml:"tag"`
		} `xml:"toptags"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getTopTags response: %w", err)
	}
	tags := make([]*Tag, 0, len(resp.TopTags.Tags))
	for _, d := range resp.TopTags.Tags {
		t, err := tagFromData(u.client, d)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// TopTags returns the user's top tags, memoized per instance.
func (u *User) TopTags(ctx context.Context) ([]*Tag, error) {
	return memo.Get(&u.props, "topTags", func() ([]*Tag, error) {
		return u.GetTopTags(ctx, 0)
	})
}

// TopTag returns the user's top tag, or nil.
func (u *User) TopTag(ctx context.Context) (*Tag, error) {
	tags, err := u.TopTags(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags[0], nil
}

// RecommendedArtists returns artists recommended for the session's user as
// a lazy depaginated sequence, memoized per instance. Requires an
// authenticated session.
func (u *User) RecommendedArtists(ctx context.Context) (*lazylist.List[*Artist], error) {
	if err := u.client.requireAuth(); err != nil {
		return nil, err
	}
	return memo.Get(&u.props, "recommendedArtists", func() (*lazylist.List[*Artist], error) {
		return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Artist], error) {
			params := map[string]string{}
			if pageNum > 1 {
				params["page"] = strconv.Itoa(pageNum)
			}
			body, err := u.client.fetch(ctx, "user.getRecommendedArtists", params, callOpts{signed: true, session: true})
			if err != nil {
				return page[*Artist]{}, err
			}
			var resp struct {
				Recommendations struct {
					TotalPages string       `xml:"totalPages,attr"`
					Artists    []artistData `xml:"artist"`
				} `xml:"recommendations"`
			}
			if err := unwrap(body, &resp); err != nil {
				return page[*Artist]{}, fmt.Errorf("lastfm: failed to parse user.getRecommendedArtists response: %w", err)
			}
			items, err := artistsFromData(u.client, resp.Recommendations.Artists)
			if err != nil {
				return page[*Artist]{}, err
			}
			return page[*Artist]{totalPages: atoi(resp.Recommendations.TotalPages), items: items}, nil
		}), nil
	})
}

// usersFromData converts raw user records into canonical users.
func usersFromData(c *Client, data []userData) ([]*User, error) {
	users := make([]*User, 0, len(data))
	for _, d := range data {
		u, err := userFromData(c, d)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// tracksFromData converts raw track records into canonical tracks.
func tracksFromData(c *Client, data []trackData, loved bool) ([]*Track, error) {
	tracks := make([]*Track, 0, len(data))
	for _, d := range data {
		t, err := trackFromData(c, d, loved)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// artistsFromData converts raw artist records into canonical artists.
func artistsFromData(c *Client, data []artistData) ([]*Artist, error) {
	artists := make([]*Artist, 0, len(data))
	for _, d := range data {
		a, err := artistFromData(c, d)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, nil
}

// isAuthFailure reports whether err is a Last.fm authentication failure,
// as opposed to a transport or parameter error.
func isAuthFailure(err error) bool {
	var lfmErr *Error
	if !errors.As(err, &lfmErr) {
		return false
	}
	switch lfmErr.Code {
	case ErrCodeAuthenticationFailed, ErrCodeInvalidSessionKey, ErrCodeUnauthorizedToken, ErrCodeExpiredToken:
		return true
	}
	return false
}
