package lastfm

import (
	"fmt"
	"sync"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Tag represents a Last.fm tag, identified by name.
type Tag struct {
	client *Client
	name   string

	mu    sync.Mutex
	url   string
	stats Stats
}

// Tag returns the canonical Tag for the given name.
func (c *Client) Tag(name string) (*Tag, error) {
	key, err := flyweight.NewKey("tag", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return flyweight.GetOrCreate(c.registry, key, func() *Tag {
		return &Tag{client: c, name: name}
	}), nil
}

// tagData is a tag record.
type tagData struct {
	Name  string `xml:"name"`
	URL   string `xml:"url"`
	Count string `xml:"count"`
}

func tagFromData(c *Client, d tagData) (*Tag, error) {
	t, err := c.Tag(d.Name)
	if err != nil {
		return nil, err
	}
	t.absorb(d)
	return t, nil
}

func (t *Tag) absorb(d tagData) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d.URL != "" {
		t.url = d.URL
	}
	if n := atoi(d.Count); n != 0 {
		t.stats = Stats{Count: n}
	}
}

// Name returns the tag's name.
func (t *Tag) Name() string { return t.name }

// URL returns the tag's page URL, if known.
func (t *Tag) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Stats returns the statistics from the listing the tag last appeared in.
func (t *Tag) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Equal reports identity equality on name.
func (t *Tag) Equal(other *Tag) bool {
	return other != nil && t.name == other.name
}

// Less orders tags by name.
func (t *Tag) Less(other *Tag) bool {
	return other != nil && t.name < other.name
}

func (t *Tag) String() string {
	return fmt.Sprintf("lastfm.Tag(%s)", t.name)
}
