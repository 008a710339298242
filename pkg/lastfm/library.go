package lastfm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jfmyers9/lastfm/pkg/lazylist"
	"github.com/jfmyers9/lastfm/pkg/memo"
)

// Library is a user's music library. Each User owns exactly one Library;
// obtain it through User.Library.
//
// The listing accessors return lazy depaginated sequences and are memoized
// per library. Add* mutations require an authenticated session and
// invalidate the corresponding cached listing on success.
type Library struct {
	client *Client
	user   *User
	props  memo.Store
}

// User returns the library's owner.
func (l *Library) User() *User { return l.user }

func (l *Library) String() string {
	return fmt.Sprintf("lastfm.Library(%s)", l.user.name)
}

// Albums returns all albums in the library, memoized per instance.
func (l *Library) Albums(ctx context.Context) (*lazylist.List[*Album], error) {
	return memo.Get(&l.props, "albums", func() (*lazylist.List[*Album], error) {
		return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Album], error) {
			body, err := l.fetchPage(ctx, "library.getAlbums", pageNum)
			if err != nil {
				return page[*Album]{}, err
			}
			var resp struct {
				Albums struct {
					TotalPages string      `xml:"totalPages,attr"`
					Albums     []albumData `xml:"album"`
				} `xml:"albums"`
			}
			if err := unwrap(body, &resp); err != nil {
				return page[*Album]{}, fmt.Errorf("lastfm: failed to parse library.getAlbums response: %w", err)
			}
			items := make([]*Album, 0, len(resp.Albums.Albums))
			for _, d := range resp.Albums.Albums {
				a, err := albumFromData(l.client, d)
				if err != nil {
					return page[*Album]{}, err
				}
				items = append(items, a)
			}
			return page[*Album]{totalPages: atoi(resp.Albums.TotalPages), items: items}, nil
		}), nil
	})
}

// Artists returns all artists in the library, memoized per instance.
func (l *Library) Artists(ctx context.Context) (*lazylist.List[*Artist], error) {
	return memo.Get(&l.props, "artists", func() (*lazylist.List[*Artist], error) {
		return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Artist], error) {
			body, err := l.fetchPage(ctx, "library.getArtists", pageNum)
			if err != nil {
				return page[*Artist]{}, err
			}
			var resp struct {
				Artists struct {
					TotalPages string       `xml:"totalPages,attr"`
					Artists    []artistData `xml:"artist"`
				} `xml:"artists"`
			}
			if err := unwrap(body, &resp); err != nil {
				return page[*Artist]{}, fmt.Errorf("lastfm: failed to parse library.getArtists response: %w", err)
			}
			items, err := artistsFromData(l.client, resp.Artists.Artists)
			if err != nil {
				return page[*Artist]{}, err
			}
			return page[*Artist]{totalPages: atoi(resp.Artists.TotalPages), items: items}, nil
		}), nil
	})
}

// Tracks returns all tracks in the library, memoized per instance.
func (l *Library) Tracks(ctx context.Context) (*lazylist.List[*Track], error) {
	return memo.Get(&l.props, "tracks", func() (*lazylist.List[*Track], error) {
		return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Track], error) {
			body, err := l.fetchPage(ctx, "library.getTracks", pageNum)
			if err != nil {
				return page[*Track]{}, err
			}
			var resp struct {
				Tracks struct {
					TotalPages string      `xml:"totalPages,attr"`
					Tracks     []trackData `xml:"track"`
				} `xml:"tracks"`
			}
			if err := unwrap(body, &resp); err != nil {
				return page[*Track]{}, fmt.Errorf("lastfm: failed to parse library.getTracks response: %w", err)
			}
			items, err := tracksFromData(l.client, resp.Tracks.Tracks, false)
			if err != nil {
				return page[*Track]{}, err
			}
			return page[*Track]{totalPages: atoi(resp.Tracks.TotalPages), items: items}, nil
		}), nil
	})
}

func (l *Library) fetchPage(ctx context.Context, method string, pageNum int) ([]byte, error) {
	params := map[string]string{"user": l.user.name}
	if pageNum > 1 {
		params["page"] = strconv.Itoa(pageNum)
	}
	return l.client.fetch(ctx, method, params, callOpts{})
}

// AddAlbum adds an album to the session user's library. Requires an
// authenticated session.
func (l *Library) AddAlbum(ctx context.Context, album *Album) error {
	if err := l.client.requireAuth(); err != nil {
		return err
	}
	err := l.client.submit(ctx, "library.addAlbum", map[string]string{
		"artist": album.Artist().Name(),
		"album":  album.Name(),
	})
	if err != nil {
		return err
	}
	l.props.Invalidate("albums")
	return nil
}

// AddArtist adds an artist to the session user's library. Requires an
// authenticated session.
func (l *Library) AddArtist(ctx context.Context, artist *Artist) error {
	if err := l.client.requireAuth(); err != nil {
		return err
	}
	err := l.client.submit(ctx, "library.addArtist", map[string]string{
		"artist": artist.Name(),
	})
	if err != nil {
		return err
	}
	l.props.Invalidate("artists")
	return nil
}

// AddTrack adds a track to the session user's library. Requires an
// authenticated session.
func (l *Library) AddTrack(ctx context.Context, track *Track) error {
	if err := l.client.requireAuth(); err != nil {
		return err
	}
	err := l.client.submit(ctx, "library.addTrack", map[string]string{
		"artist": track.Artist().Name(),
		"track":  track.Name(),
	})
	if err != nil {
		return err
	}
	l.props.Invalidate("tracks")
	return nil
}
