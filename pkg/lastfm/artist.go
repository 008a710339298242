package lastfm

import (
	"fmt"
	"sync"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Artist represents a music artist. Artists are flyweights identified by
// name: every response that mentions the same artist materializes the same
// instance.
type Artist struct {
	client *Client
	name   string

	mu         sync.Mutex
	mbid       string
	url        string
	streamable bool
	image      map[string]string
	stats      Stats
}

// Artist returns the canonical Artist for the given name.
func (c *Client) Artist(name string) (*Artist, error) {
	key, err := flyweight.NewKey("artist", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return flyweight.GetOrCreate(c.registry, key, func() *Artist {
		return &Artist{client: c, name: name}
	}), nil
}

// artistData is a full artist record.
type artistData struct {
	Rank       string      `xml:"rank,attr"`
	Name       string      `xml:"name"`
	MBID       string      `xml:"mbid"`
	URL        string      `xml:"url"`
	Streamable string      `xml:"streamable"`
	Playcount  string      `xml:"playcount"`
	Tagcount   string      `xml:"tagcount"`
	Match      string      `xml:"match"`
	Image      []imageData `xml:"image"`
}

// artistFromData materializes the canonical artist for a parsed record and
// folds the record's transient fields into it.
func artistFromData(c *Client, d artistData) (*Artist, error) {
	a, err := c.Artist(d.Name)
	if err != nil {
		return nil, err
	}
	a.absorb(d)
	return a, nil
}

// artistFromRef materializes an artist from a compact reference.
func artistFromRef(c *Client, r artistRef) (*Artist, error) {
	return artistFromData(c, artistData{
		Name:  r.name(),
		MBID:  r.mbid(),
		URL:   r.URL,
		Image: r.Image,
	})
}

// absorb folds freshly parsed fields into the canonical instance. Only
// fields the record actually carries overwrite existing values.
func (a *Artist) absorb(d artistData) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d.MBID != "" {
		a.mbid = d.MBID
	}
	if d.URL != "" {
		a.url = d.URL
	}
	if d.Streamable != "" {
		a.streamable = bool01(d.Streamable)
	}
	if img := imagesFromData(d.Image); img != nil {
		a.image = img
	}
	stats := Stats{
		Rank:      atoi(d.Rank),
		PlayCount: atoi(d.Playcount),
		TagCount:  atoi(d.Tagcount),
		Match:     atof(d.Match),
	}
	if stats != (Stats{}) {
		a.stats = stats
	}
}

// Name returns the artist's name.
func (a *Artist) Name() string { return a.name }

// MBID returns the artist's MusicBrainz id, if known.
func (a *Artist) MBID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mbid
}

// URL returns the artist's page URL, if known.
func (a *Artist) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.url
}

// Streamable reports whether the artist is streamable.
func (a *Artist) Streamable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.streamable
}

// Image returns the artist's images by size.
func (a *Artist) Image() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.image
}

// Stats returns the statistics from the listing the artist last appeared in.
func (a *Artist) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Equal reports identity equality: two artists are equal iff their names
// are, regardless of transient fields.
func (a *Artist) Equal(other *Artist) bool {
	return other != nil && a.name == other.name
}

// Less orders artists by name.
func (a *Artist) Less(other *Artist) bool {
	return other != nil && a.name < other.name
}

func (a *Artist) String() string {
	return fmt.Sprintf("lastfm.Artist(%s)", a.name)
}
