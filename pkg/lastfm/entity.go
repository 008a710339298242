package lastfm

import (
	"strconv"
	"strings"
	"time"
)

// Period selects the time range of a top-item listing.
type Period string

// Periods accepted by the user.getTop* methods.
const (
	PeriodOverall Period = "overall"
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
)

// Stats holds the listing-dependent statistics attached to an entity: its
// rank within a chart, play counts, tag counts, neighbour match strength.
// Stats are transient and never part of an entity's identity.
type Stats struct {
	Rank      int
	PlayCount int
	TagCount  int
	Count     int
	Weight    int
	Match     float64
}

// Location is a venue's geographic location.
type Location struct {
	Street     string
	City       string
	PostalCode string
	Country    string
	Latitude   float64
	Longitude  float64
}

// Time layouts used across the API's XML responses.
const (
	timeLayoutHuman    = "2 Jan 2006, 15:04"          // loved/played dates
	timeLayoutPlaylist = "2006-01-02T15:04:05"        // playlist dates
	timeLayoutEvent    = "Mon, 2 Jan 2006 15:04:05"   // event start dates
)

// atoi parses an integer field, tolerating surrounding whitespace and
// returning 0 for absent values.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// atof parses a float field, returning 0 for absent values.
func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// bool01 parses the API's "0"/"1" boolean fields.
func bool01(s string) bool {
	return strings.TrimSpace(s) == "1"
}

// parseTime parses a timestamp field, returning the zero time for absent or
// malformed values.
func parseTime(layout, s string) time.Time {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// unixTime converts a unix-seconds attribute into a time.Time.
func unixTime(s string) time.Time {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}

// imageData is one <image size="..."> element.
type imageData struct {
	Size string `xml:"size,attr"`
	URL  string `xml:",chardata"`
}

// imagesFromData converts image elements into a size-to-URL map. Elements
// without a size attribute (the single-image form some methods use) are
// keyed as "medium".
func imagesFromData(imgs []imageData) map[string]string {
	if len(imgs) == 0 {
		return nil
	}
	m := make(map[string]string, len(imgs))
	for _, img := range imgs {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		size := img.Size
		if size == "" {
			size = "medium"
		}
		m[size] = url
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// artistRef is an artist reference as it appears inside other records. The
// API uses two shapes: a nested element set (<artist><name>...</name>...)
// and a compact form where the artist name is character data with the mbid
// as an attribute (<artist mbid="...">Name</artist>).
type artistRef struct {
	MBIDAttr string      `xml:"mbid,attr"`
	Text     string      `xml:",chardata"`
	Name     string      `xml:"name"`
	MBID     string      `xml:"mbid"`
	URL      string      `xml:"url"`
	Image    []imageData `xml:"image"`
}

// name returns the artist name in either shape.
func (r artistRef) name() string {
	if r.Name != "" {
		return r.Name
	}
	return strings.TrimSpace(r.Text)
}

// mbid returns the MusicBrainz id in either shape.
func (r artistRef) mbid() string {
	if r.MBID != "" {
		return r.MBID
	}
	return r.MBIDAttr
}

// albumRef is the compact album reference used by user.getRecentTracks.
type albumRef struct {
	MBIDAttr string `xml:"mbid,attr"`
	Text     string `xml:",chardata"`
}

// streamableData is a <streamable fulltrack="..."> element.
type streamableData struct {
	FullTrack string `xml:"fulltrack,attr"`
	Value     string `xml:",chardata"`
}
