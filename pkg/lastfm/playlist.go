package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Playlist represents a playlist belonging to a user, identified by its
// numeric id.
type Playlist struct {
	client  *Client
	id      int
	creator *User

	mu    sync.Mutex
	title string
	date  time.Time
	size  int
}

// playlistData is a playlist record from user.getPlaylists.
type playlistData struct {
	ID    string `xml:"id"`
	Title string `xml:"title"`
	Date  string `xml:"date"`
	Size  string `xml:"size"`
}

func playlistFromData(c *Client, d playlistData, creator *User) (*Playlist, error) {
	key, err := flyweight.NewKey("playlist", map[string]string{"id": d.ID})
	if err != nil {
		return nil, err
	}
	id, _ := strconv.Atoi(d.ID)
	p := flyweight.GetOrCreate(c.registry, key, func() *Playlist {
		return &Playlist{client: c, id: id, creator: creator}
	})
	p.absorb(d)
	return p, nil
}

func (p *Playlist) absorb(d playlistData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d.Title != "" {
		p.title = d.Title
	}
	if when := parseTime(timeLayoutPlaylist, d.Date); !when.IsZero() {
		p.date = when
	}
	if n := atoi(d.Size); n != 0 {
		p.size = n
	}
}

// ID returns the playlist's id.
func (p *Playlist) ID() int { return p.id }

// Title returns the playlist's title.
func (p *Playlist) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// Date returns when the playlist was created.
func (p *Playlist) Date() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

// Size returns the number of tracks in the playlist.
func (p *Playlist) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Creator returns the playlist's owner.
func (p *Playlist) Creator() *User { return p.creator }

// AddTrack adds a track to the playlist. Requires an authenticated session.
// On success the creator's cached playlist listing is invalidated so the
// next read reflects the new size.
func (p *Playlist) AddTrack(ctx context.Context, artist, track string) error {
	if err := p.client.requireAuth(); err != nil {
		return err
	}
	params := map[string]string{
		"playlistID": strconv.Itoa(p.id),
		"artist":     artist,
		"track":      track,
	}
	if err := p.client.submit(ctx, "playlist.addTrack", params); err != nil {
		return err
	}
	if p.creator != nil {
		p.creator.props.Invalidate("playlists")
	}
	return nil
}

// Equal reports identity equality on playlist id.
func (p *Playlist) Equal(other *Playlist) bool {
	return other != nil && p.id == other.id
}

func (p *Playlist) String() string {
	return fmt.Sprintf("lastfm.Playlist(%d: %s)", p.id, p.Title())
}
