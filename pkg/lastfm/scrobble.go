package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ScrobbleService provides scrobbling operations for the Last.fm API.
type ScrobbleService struct {
	client *Client
}

const (
	// MaxBatchSize is the maximum number of scrobbles allowed in a single batch.
	MaxBatchSize = 50
)

// TrackInfo describes a track for scrobbling or now playing updates. It is
// plain submission data, not a canonical Track entity.
type TrackInfo struct {
	Artist      string // Required: Artist name
	Track       string // Required: Track name
	Album       string // Optional: Album name
	AlbumArtist string // Optional: Album artist (if different from track artist)
	Duration    int    // Optional: Track duration in seconds
	TrackNumber int    // Optional: Track number on album
	MBTrackID   string // Optional: MusicBrainz track ID
}

// Scrobble represents a single scrobble with timestamp.
type Scrobble struct {
	Track     TrackInfo // The track being scrobbled
	Timestamp time.Time // When the track was played
}

// IgnoredMessage explains why Last.fm rejected a submitted item.
type IgnoredMessage struct {
	Code int
	Text string
}

// NowPlayingResponse represents the response from track.updateNowPlaying.
type NowPlayingResponse struct {
	Artist         string
	Track          string
	Album          string
	AlbumArtist    string
	IgnoredMessage IgnoredMessage
}

// AcceptedScrobble is one entry of a scrobble batch response.
type AcceptedScrobble struct {
	Artist         string
	Track          string
	Album          string
	Timestamp      int64
	IgnoredMessage IgnoredMessage
}

// ScrobbleResponse represents the response from track.scrobble.
type ScrobbleResponse struct {
	Accepted  int // Number of scrobbles accepted
	Ignored   int // Number of scrobbles ignored
	Scrobbles []AcceptedScrobble
}

// UpdateNowPlaying updates the "now playing" status on Last.fm.
//
// This should be called when a track starts playing. It does not count
// as a scrobble and does not affect play counts.
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *ScrobbleService) UpdateNowPlaying(ctx context.Context, track TrackInfo) (*NowPlayingResponse, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"artist": track.Artist,
		"track":  track.Track,
	}
	addTrackParams(params, track, "")

	body, err := s.client.fetch(ctx, "track.updateNowPlaying", params, callOpts{signed: true, session: true, write: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		NowPlaying struct {
			Artist         string `xml:"artist"`
			Track          string `xml:"track"`
			Album          string `xml:"album"`
			AlbumArtist    string `xml:"albumArtist"`
			IgnoredMessage struct {
				Code string `xml:"code,attr"`
				Text string `xml:",chardata"`
			} `xml:"ignoredMessage"`
		} `xml:"nowplaying"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse now playing response: %w", err)
	}

	return &NowPlayingResponse{
		Artist:      resp.NowPlaying.Artist,
		Track:       resp.NowPlaying.Track,
		Album:       resp.NowPlaying.Album,
		AlbumArtist: resp.NowPlaying.AlbumArtist,
		IgnoredMessage: IgnoredMessage{
			Code: atoi(resp.NowPlaying.IgnoredMessage.Code),
			Text: resp.NowPlaying.IgnoredMessage.Text,
		},
	}, nil
}

// SubmitScrobble submits a single scrobble to Last.fm.
//
// A track should only be scrobbled when:
// - The track is longer than 30 seconds, AND
// - The track has been played for at least 50% of its duration OR 4 minutes
//   (whichever comes first)
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *ScrobbleService) SubmitScrobble(ctx context.Context, track TrackInfo, timestamp time.Time) (*ScrobbleResponse, error) {
	return s.ScrobbleBatch(ctx, []Scrobble{{Track: track, Timestamp: timestamp}})
}

// ScrobbleBatch submits multiple scrobbles to Last.fm in a single request.
//
// Up to 50 scrobbles can be submitted at once. If more than 50 scrobbles
// are provided, only the first 50 will be submitted.
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *ScrobbleService) ScrobbleBatch(ctx context.Context, scrobbles []Scrobble) (*ScrobbleResponse, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}
	if len(scrobbles) == 0 {
		return &ScrobbleResponse{}, nil
	}
	if len(scrobbles) > MaxBatchSize {
		scrobbles = scrobbles[:MaxBatchSize]
	}

	params := map[string]string{}
	for i, scrobble := range scrobbles {
		idx := fmt.Sprintf("[%d]", i)
		params["artist"+idx] = scrobble.Track.Artist
		params["track"+idx] = scrobble.Track.Track
		params["timestamp"+idx] = strconv.FormatInt(scrobble.Timestamp.Unix(), 10)
		addTrackParams(params, scrobble.Track, idx)
	}

	body, err := s.client.fetch(ctx, "track.scrobble", params, callOpts{signed: true, session: true, write: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Scrobbles struct {
			Accepted  string `xml:"accepted,attr"`
			Ignored   string `xml:"ignored,attr"`
			Scrobbles []struct {
				Artist         string `xml:"artist"`
				Track          string `xml:"track"`
				Album          string `xml:"album"`
				Timestamp      string `xml:"timestamp"`
				IgnoredMessage struct {
					Code string `xml:"code,attr"`
					Text string `xml:",chardata"`
				} `xml:"ignoredMessage"`
			} `xml:"scrobble"`
		} `xml:"scrobbles"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse scrobble response: %w", err)
	}

	result := &ScrobbleResponse{
		Accepted:  atoi(resp.Scrobbles.Accepted),
		Ignored:   atoi(resp.Scrobbles.Ignored),
		Scrobbles: make([]AcceptedScrobble, len(resp.Scrobbles.Scrobbles)),
	}
	for i, sc := range resp.Scrobbles.Scrobbles {
		ts, _ := strconv.ParseInt(sc.Timestamp, 10, 64)
		result.Scrobbles[i] = AcceptedScrobble{
			Artist:    sc.Artist,
			Track:     sc.Track,
			Album:     sc.Album,
			Timestamp: ts,
			IgnoredMessage: IgnoredMessage{
				Code: atoi(sc.IgnoredMessage.Code),
				Text: sc.IgnoredMessage.Text,
			},
		}
	}
	return result, nil
}

// addTrackParams adds a track's optional submission parameters, suffixed
// for batch requests.
func addTrackParams(params map[string]string, track TrackInfo, idx string) {
	if track.Album != "" {
		params["album"+idx] = track.Album
	}
	if track.AlbumArtist != "" {
		params["albumArtist"+idx] = track.AlbumArtist
	}
	if track.Duration > 0 {
		params["duration"+idx] = strconv.Itoa(track.Duration)
	}
	if track.TrackNumber > 0 {
		params["trackNumber"+idx] = strconv.Itoa(track.TrackNumber)
	}
	if track.MBTrackID != "" {
		params["mbid"+idx] = track.MBTrackID
	}
}
