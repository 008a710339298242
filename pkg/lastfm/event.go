package lastfm

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
)

// Event represents a concert or festival appearance, identified by its
// numeric event id.
type Event struct {
	client *Client
	id     int

	mu          sync.Mutex
	title       string
	artists     []string
	headliner   string
	venue       *Venue
	start       time.Time
	description string
	image       map[string]string
	attendance  int
	reviews     int
	tag         string
	url         string
}

// eventData is a full event record.
type eventData struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Artists struct {
		Artists   []string `xml:"artist"`
		Headliner string   `xml:"headliner"`
	} `xml:"artists"`
	Venue       venueData   `xml:"venue"`
	StartDate   string      `xml:"startDate"`
	Description string      `xml:"description"`
	Image       []imageData `xml:"image"`
	Attendance  string      `xml:"attendance"`
	Reviews     string      `xml:"reviews"`
	Tag         string      `xml:"tag"`
	URL         string      `xml:"url"`
}

// eventFromData materializes the canonical event for a parsed record.
func eventFromData(c *Client, d eventData) (*Event, error) {
	key, err := flyweight.NewKey("event", map[string]string{"id": d.ID})
	if err != nil {
		return nil, err
	}
	id, _ := strconv.Atoi(d.ID)
	e := flyweight.GetOrCreate(c.registry, key, func() *Event {
		return &Event{client: c, id: id}
	})
	e.absorb(c, d)
	return e, nil
}

func (e *Event) absorb(c *Client, d eventData) {
	// Venues without a URL cannot be identified; such events keep a nil
	// venue rather than failing the whole listing.
	var venue *Venue
	if d.Venue.URL != "" {
		venue, _ = venueFromData(c, d.Venue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if d.Title != "" {
		e.title = d.Title
	}
	if len(d.Artists.Artists) > 0 {
		e.artists = d.Artists.Artists
	}
	if d.Artists.Headliner != "" {
		e.headliner = d.Artists.Headliner
	}
	if venue != nil {
		e.venue = venue
	}
	if when := parseTime(timeLayoutEvent, d.StartDate); !when.IsZero() {
		e.start = when
	}
	if d.Description != "" {
		e.description = d.Description
	}
	if img := imagesFromData(d.Image); img != nil {
		e.image = img
	}
	if n := atoi(d.Attendance); n != 0 {
		e.attendance = n
	}
	if n := atoi(d.Reviews); n != 0 {
		e.reviews = n
	}
	if d.Tag != "" {
		e.tag = d.Tag
	}
	if d.URL != "" {
		e.url = d.URL
	}
}

// ID returns the event's id.
func (e *Event) ID() int { return e.id }

// Title returns the event's title.
func (e *Event) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// Artists returns the names of the artists appearing at the event.
func (e *Event) Artists() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.artists
}

// Headliner returns the headlining artist's name.
func (e *Event) Headliner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.headliner
}

// Venue returns the event's venue, or nil if the response did not identify
// one.
func (e *Event) Venue() *Venue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.venue
}

// Start returns when the event starts.
func (e *Event) Start() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.start
}

// Description returns the event's description.
func (e *Event) Description() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.description
}

// Image returns the event's images by size.
func (e *Event) Image() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.image
}

// Attendance returns how many users are attending.
func (e *Event) Attendance() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attendance
}

// Reviews returns the number of reviews the event has.
func (e *Event) Reviews() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reviews
}

// Tag returns the event's tag.
func (e *Event) Tag() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tag
}

// URL returns the event's page URL.
func (e *Event) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

// Equal reports identity equality on event id.
func (e *Event) Equal(other *Event) bool {
	return other != nil && e.id == other.id
}

// Less orders events by start time.
func (e *Event) Less(other *Event) bool {
	return other != nil && e.Start().Before(other.Start())
}

func (e *Event) String() string {
	return fmt.Sprintf("lastfm.Event(%d: %s)", e.id, e.Title())
}
