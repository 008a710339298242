package lastfm

import (
	"fmt"
	"sync"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Album represents a music album, identified by its artist and name.
type Album struct {
	client *Client
	name   string
	artist *Artist

	mu    sync.Mutex
	mbid  string
	url   string
	image map[string]string
	stats Stats
}

// Album returns the canonical Album for the given artist and name.
func (c *Client) Album(artist, name string) (*Album, error) {
	key, err := flyweight.NewKey("album", map[string]string{"artist": artist, "name": name})
	if err != nil {
		return nil, err
	}
	return flyweight.GetOrCreate(c.registry, key, func() *Album {
		// The artist can always be materialized here: NewKey already
		// rejected an empty artist name.
		a, _ := c.Artist(artist)
		return &Album{client: c, name: name, artist: a}
	}), nil
}

// albumData is a full album record.
type albumData struct {
	Rank      string      `xml:"rank,attr"`
	Name      string      `xml:"name"`
	MBID      string      `xml:"mbid"`
	URL       string      `xml:"url"`
	Playcount string      `xml:"playcount"`
	Artist    artistRef   `xml:"artist"`
	Image     []imageData `xml:"image"`
}

// albumFromData materializes the canonical album for a parsed record.
func albumFromData(c *Client, d albumData) (*Album, error) {
	if _, err := artistFromRef(c, d.Artist); err != nil {
		return nil, err
	}
	a, err := c.Album(d.Artist.name(), d.Name)
	if err != nil {
		return nil, err
	}
	a.absorb(d)
	return a, nil
}

func (a *Album) absorb(d albumData) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d.MBID != "" {
		a.mbid = d.MBID
	}
	if d.URL != "" {
		a.url = d.URL
	}
	if img := imagesFromData(d.Image); img != nil {
		a.image = img
	}
	stats := Stats{
		Rank:      atoi(d.Rank),
		PlayCount: atoi(d.Playcount),
	}
	if stats != (Stats{}) {
		a.stats = stats
	}
}

// Name returns the album's name.
func (a *Album) Name() string { return a.name }

// Artist returns the album's artist.
func (a *Album) Artist() *Artist { return a.artist }

// MBID returns the album's MusicBrainz id, if known.
func (a *Album) MBID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mbid
}

// URL returns the album's page URL, if known.
func (a *Album) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.url
}

// Image returns the album's images by size.
func (a *Album) Image() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.image
}

// Stats returns the statistics from the listing the album last appeared in.
func (a *Album) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Equal reports identity equality on artist and name.
func (a *Album) Equal(other *Album) bool {
	return other != nil && a.name == other.name && a.artist.Equal(other.artist)
}

// Less orders albums by name.
func (a *Album) Less(other *Album) bool {
	return other != nil && a.name < other.name
}

func (a *Album) String() string {
	return fmt.Sprintf("lastfm.Album(%s - %s)", a.artist.Name(), a.name)
}
