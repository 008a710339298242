package lastfm

import (
	"fmt"
	"sync"
	"time"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Track represents a music track, identified by its artist and name.
type Track struct {
	client *Client
	name   string
	artist *Artist

	mu         sync.Mutex
	album      *Album
	mbid       string
	url        string
	streamable bool
	fullTrack  bool
	image      map[string]string
	stats      Stats
	playedOn   time.Time
	lovedOn    time.Time
}

// Track returns the canonical Track for the given artist and name.
func (c *Client) Track(artist, name string) (*Track, error) {
	key, err := flyweight.NewKey("track", map[string]string{"artist": artist, "name": name})
	if err != nil {
		return nil, err
	}
	return flyweight.GetOrCreate(c.registry, key, func() *Track {
		a, _ := c.Artist(artist)
		return &Track{client: c, name: name, artist: a}
	}), nil
}

// trackData is a full track record.
type trackData struct {
	Rank       string         `xml:"rank,attr"`
	Name       string         `xml:"name"`
	MBID       string         `xml:"mbid"`
	URL        string         `xml:"url"`
	Streamable streamableData `xml:"streamable"`
	Artist     artistRef      `xml:"artist"`
	Album      albumRef       `xml:"album"`
	Playcount  string         `xml:"playcount"`
	Tagcount   string         `xml:"tagcount"`
	Date       string         `xml:"date"`
	Image      []imageData    `xml:"image"`
}

// trackFromData materializes the canonical track for a parsed record.
// The loved flag controls whether the record's date field is the time the
// track was loved or the time it was played.
func trackFromData(c *Client, d trackData, loved bool) (*Track, error) {
	if _, err := artistFromRef(c, d.Artist); err != nil {
		return nil, err
	}
	t, err := c.Track(d.Artist.name(), d.Name)
	if err != nil {
		return nil, err
	}
	t.absorb(c, d, loved)
	return t, nil
}

func (t *Track) absorb(c *Client, d trackData, loved bool) {
	var album *Album
	if name := d.Album.Text; name != "" {
		album, _ = c.Album(d.Artist.name(), name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d.MBID != "" {
		t.mbid = d.MBID
	}
	if d.URL != "" {
		t.url = d.URL
	}
	if d.Streamable.Value != "" {
		t.streamable = bool01(d.Streamable.Value)
	}
	if d.Streamable.FullTrack != "" {
		t.fullTrack = bool01(d.Streamable.FullTrack)
	}
	if album != nil {
		t.album = album
	}
	if img := imagesFromData(d.Image); img != nil {
		t.image = img
	}
	stats := Stats{
		Rank:      atoi(d.Rank),
		PlayCount: atoi(d.Playcount),
		TagCount:  atoi(d.Tagcount),
	}
	if stats != (Stats{}) {
		t.stats = stats
	}
	if when := parseTime(timeLayoutHuman, d.Date); !when.IsZero() {
		if loved {
			t.lovedOn = when
		} else {
			t.playedOn = when
		}
	}
}

// Name returns the track's name.
func (t *Track) Name() string { return t.name }

// Artist returns the track's artist.
func (t *Track) Artist() *Artist { return t.artist }

// Album returns the track's album, if known.
func (t *Track) Album() *Album {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.album
}

// MBID returns the track's MusicBrainz id, if known.
func (t *Track) MBID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mbid
}

// URL returns the track's page URL, if known.
func (t *Track) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Streamable reports whether the track is streamable.
func (t *Track) Streamable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streamable
}

// FullTrack reports whether the full track is streamable.
func (t *Track) FullTrack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fullTrack
}

// Image returns the track's images by size.
func (t *Track) Image() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.image
}

// Stats returns the statistics from the listing the track last appeared in.
func (t *Track) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// PlayedOn returns when the track was played, for tracks from a recent
// tracks listing.
func (t *Track) PlayedOn() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playedOn
}

// LovedOn returns when the track was loved, for tracks from a loved tracks
// listing.
func (t *Track) LovedOn() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lovedOn
}

// Equal reports identity equality on artist and name.
func (t *Track) Equal(other *Track) bool {
	return other != nil && t.name == other.name && t.artist.Equal(other.artist)
}

// Less orders tracks by name.
func (t *Track) Less(other *Track) bool {
	return other != nil && t.name < other.name
}

func (t *Track) String() string {
	return fmt.Sprintf("lastfm.Track(%s - %s)", t.artist.Name(), t.name)
}
