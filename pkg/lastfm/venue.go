package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jfmyers9/lastfm/pkg/flyweight"
	"github.com/jfmyers9/lastfm/pkg/lazylist"
	"github.com/jfmyers9/lastfm/pkg/memo"
)

// Venue represents a venue of an event. Venues are identified by their page
// URL.
type Venue struct {
	client *Client
	url    string
	props  memo.Store

	mu       sync.Mutex
	id       int
	name     string
	location Location
}

// Venue returns the canonical Venue for the given id, name and URL. The URL
// is the venue's identity and must be non-empty.
func (c *Client) Venue(id int, name, url string) (*Venue, error) {
	key, err := flyweight.NewKey("venue", map[string]string{"url": url})
	if err != nil {
		return nil, err
	}
	v := flyweight.GetOrCreate(c.registry, key, func() *Venue {
		return &Venue{client: c, url: url}
	})
	v.mu.Lock()
	if id != 0 {
		v.id = id
	}
	if name != "" {
		v.name = name
	}
	v.mu.Unlock()
	return v, nil
}

// venueData is a venue record.
type venueData struct {
	ID       string       `xml:"id"`
	Name     string       `xml:"name"`
	Location locationData `xml:"location"`
	URL      string       `xml:"url"`
}

type locationData struct {
	City       string `xml:"city"`
	Country    string `xml:"country"`
	Street     string `xml:"street"`
	PostalCode string `xml:"postalcode"`
	Point      struct {
		Lat  string `xml:"lat"`
		Long string `xml:"long"`
	} `xml:"point"`
}

func venueFromData(c *Client, d venueData) (*Venue, error) {
	v, err := c.Venue(atoi(d.ID), d.Name, d.URL)
	if err != nil {
		return nil, err
	}
	v.absorb(d)
	return v, nil
}

func (v *Venue) absorb(d venueData) {
	loc := Location{
		Street:     d.Location.Street,
		City:       d.Location.City,
		PostalCode: d.Location.PostalCode,
		Country:    d.Location.Country,
		Latitude:   atof(d.Location.Point.Lat),
		Longitude:  atof(d.Location.Point.Long),
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if loc != (Location{}) {
		v.location = loc
	}
}

// ID returns the venue's id.
func (v *Venue) ID() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.id
}

// Name returns the venue's name.
func (v *Venue) Name() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.name
}

// Location returns the venue's location.
func (v *Venue) Location() Location {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.location
}

// URL returns the venue's page URL.
func (v *Venue) URL() string { return v.url }

// Equal reports identity equality on URL.
func (v *Venue) Equal(other *Venue) bool {
	return other != nil && v.url == other.url
}

// Less orders venues by name.
func (v *Venue) Less(other *Venue) bool {
	return other != nil && v.Name() < other.Name()
}

func (v *Venue) String() string {
	return fmt.Sprintf("lastfm.Venue(%s)", v.Name())
}

// params builds request parameters addressed to this venue.
func (v *Venue) params() (map[string]string, error) {
	id := v.ID()
	if id == 0 {
		return nil, fmt.Errorf("lastfm: venue id is required")
	}
	return map[string]string{"venue": strconv.Itoa(id)}, nil
}

// eventsPage is one page of an events listing.
type eventsPage struct {
	TotalPages string      `xml:"totalPages,attr"`
	Events     []eventData `xml:"event"`
}

// Events returns the venue's upcoming events. The listing is memoized per
// venue instance.
func (v *Venue) Events(ctx context.Context) ([]*Event, error) {
	return memo.Get(&v.props, "events", func() ([]*Event, error) {
		params, err := v.params()
		if err != nil {
			return nil, err
		}
		body, err := v.client.fetch(ctx, "venue.getEvents", params, callOpts{})
		if err != nil {
			return nil, err
		}
		var resp struct {
			Events eventsPage `xml:"events"`
		}
		if err := unwrap(body, &resp); err != nil {
			return nil, fmt.Errorf("lastfm: failed to parse venue.getEvents response: %w", err)
		}
		return eventsFromData(v.client, resp.Events.Events)
	})
}

// GetPastEvents returns the venue's past events as a lazy depaginated
// sequence. A limit of 0 uses the API default page size.
func (v *Venue) GetPastEvents(ctx context.Context, limit int) *lazylist.List[*Event] {
	return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Event], error) {
		params, err := v.params()
		if err != nil {
			return page[*Event]{}, err
		}
		if limit > 0 {
			params["limit"] = strconv.Itoa(limit)
		}
		if pageNum > 1 {
			params["page"] = strconv.Itoa(pageNum)
		}
		body, err := v.client.fetch(ctx, "venue.getPastEvents", params, callOpts{})
		if err != nil {
			return page[*Event]{}, err
		}
		var resp struct {
			Events eventsPage `xml:"events"`
		}
		if err := unwrap(body, &resp); err != nil {
			return page[*Event]{}, fmt.Errorf("lastfm: failed to parse venue.getPastEvents response: %w", err)
		}
		items, err := eventsFromData(v.client, resp.Events.Events)
		if err != nil {
			return page[*Event]{}, err
		}
		return page[*Event]{totalPages: atoi(resp.Events.TotalPages), items: items}, nil
	})
}

// PastEvents returns the venue's past events, memoized per venue instance.
func (v *Venue) PastEvents(ctx context.Context) (*lazylist.List[*Event], error) {
	return memo.Get(&v.props, "pastEvents", func() (*lazylist.List[*Event], error) {
		return v.GetPastEvents(ctx, 0), nil
	})
}

// eventsFromData converts raw event records into canonical events.
func eventsFromData(c *Client, data []eventData) ([]*Event, error) {
	events := make([]*Event, 0, len(data))
	for _, d := range data {
		e, err := eventFromData(c, d)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// SearchVenues searches venues by name, returning matches as a lazy
// depaginated sequence. A limit of 0 uses the API default page size.
func (c *Client) SearchVenues(ctx context.Context, name string, limit int) *lazylist.List[*Venue] {
	return depaginate(ctx, func(ctx context.Context, pageNum int) (page[*Venue], error) {
		params := map[string]string{"venue": name}
		if limit > 0 {
			params["limit"] = strconv.Itoa(limit)
		}
		if pageNum > 1 {
			params["page"] = strconv.Itoa(pageNum)
		}
		body, err := c.fetch(ctx, "venue.search", params, callOpts{})
		if err != nil {
			return page[*Venue]{}, err
		}
		var resp struct {
			Results struct {
				TotalResults string `xml:"totalResults"`
				ItemsPerPage string `xml:"itemsPerPage"`
				Matches      struct {
					Venues []venueData `xml:"venue"`
				} `xml:"venuematches"`
			} `xml:"results"`
		}
		if err := unwrap(body, &resp); err != nil {
			return page[*Venue]{}, fmt.Errorf("lastfm: failed to parse venue.search response: %w", err)
		}

		venues := make([]*Venue, 0, len(resp.Results.Matches.Venues))
		for _, d := range resp.Results.Matches.Venues {
			v, err := venueFromData(c, d)
			if err != nil {
				return page[*Venue]{}, err
			}
			venues = append(venues, v)
		}

		// venue.search reports opensearch totals instead of a page count.
		total := atoi(resp.Results.TotalResults)
		perPage := atoi(resp.Results.ItemsPerPage)
		totalPages := 1
		if perPage > 0 {
			totalPages = (total + perPage - 1) / perPage
		}
		return page[*Venue]{totalPages: totalPages, items: venues}, nil
	})
}
