package lastfm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

// TestScrobbleService_UpdateNowPlaying tests the UpdateNowPlaying method.
func TestScrobbleService_UpdateNowPlaying(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("track.updateNowPlaying", func(r *http.Request) string {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}
		if r.FormValue("artist") != "The Beatles" {
			t.Errorf("expected artist The Beatles, got %s", r.FormValue("artist"))
		}
		if r.FormValue("track") != "Yesterday" {
			t.Errorf("expected track Yesterday, got %s", r.FormValue("track"))
		}
		if r.FormValue("album") != "Help!" {
			t.Errorf("expected album Help!, got %s", r.FormValue("album"))
		}
		if r.FormValue("duration") != "125" {
			t.Errorf("expected duration 125, got %s", r.FormValue("duration"))
		}
		if r.FormValue("sk") != "test-session" {
			t.Errorf("expected sk test-session, got %s", r.FormValue("sk"))
		}
		if r.FormValue("api_sig") == "" {
			t.Error("expected api_sig to be present")
		}
		return okXML(`<nowplaying>
			<artist corrected="0">The Beatles</artist>
			<track corrected="0">Yesterday</track>
			<album corrected="0">Help!</album>
			<albumArtist corrected="0"></albumArtist>
			<ignoredMessage code="0"></ignoredMessage>
		</nowplaying>`)
	})

	client := stub.client(t, Config{SessionKey: "test-session"})
	resp, err := client.Scrobble().UpdateNowPlaying(context.Background(), TrackInfo{
		Artist:   "The Beatles",
		Track:    "Yesterday",
		Album:    "Help!",
		Duration: 125,
	})
	if err != nil {
		t.Fatalf("UpdateNowPlaying failed: %v", err)
	}
	if resp.Artist != "The Beatles" || resp.Track != "Yesterday" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.IgnoredMessage.Code != 0 {
		t.Errorf("expected no ignored message, got %+v", resp.IgnoredMessage)
	}
}

// TestScrobbleService_RequiresSession tests the authentication gate.
func TestScrobbleService_RequiresSession(t *testing.T) {
	stub := newStubAPI(t)
	client := stub.client(t, Config{})

	ctx := context.Background()
	track := TrackInfo{Artist: "The Beatles", Track: "Yesterday"}

	if _, err := client.Scrobble().UpdateNowPlaying(ctx, track); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("UpdateNowPlaying: expected ErrAuthRequired, got %v", err)
	}
	if _, err := client.Scrobble().SubmitScrobble(ctx, track, time.Now()); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("SubmitScrobble: expected ErrAuthRequired, got %v", err)
	}
	if stub.total() != 0 {
		t.Errorf("expected no requests without a session, got %d", stub.total())
	}
}

// TestScrobbleService_ScrobbleBatch tests batch submission.
func TestScrobbleService_ScrobbleBatch(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	stub := newStubAPI(t)
	stub.handle("track.scrobble", func(r *http.Request) string {
		if r.FormValue("artist[0]") != "The Beatles" {
			t.Errorf("expected artist[0] The Beatles, got %s", r.FormValue("artist[0]"))
		}
		if r.FormValue("track[1]") != "Let It Be" {
			t.Errorf("expected track[1] Let It Be, got %s", r.FormValue("track[1]"))
		}
		if r.FormValue("timestamp[0]") != strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10) {
			t.Errorf("unexpected timestamp[0]: %s", r.FormValue("timestamp[0]"))
		}
		return okXML(`<scrobbles accepted="2" ignored="0">
			<scrobble>
				<artist corrected="0">The Beatles</artist>
				<track corrected="0">Yesterday</track>
				<album corrected="0"></album>
				<timestamp>` + strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10) + `</timestamp>
				<ignoredMessage code="0"></ignoredMessage>
			</scrobble>
			<scrobble>
				<artist corrected="0">The Beatles</artist>
				<track corrected="0">Let It Be</track>
				<album corrected="0"></album>
				<timestamp>` + strconv.FormatInt(now.Add(-5*time.Minute).Unix(), 10) + `</timestamp>
				<ignoredMessage code="0"></ignoredMessage>
			</scrobble>
		</scrobbles>`)
	})

	client := stub.client(t, Config{SessionKey: "test-session"})
	resp, err := client.Scrobble().ScrobbleBatch(context.Background(), []Scrobble{
		{Track: TrackInfo{Artist: "The Beatles", Track: "Yesterday"}, Timestamp: now.Add(-10 * time.Minute)},
		{Track: TrackInfo{Artist: "The Beatles", Track: "Let It Be"}, Timestamp: now.Add(-5 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("ScrobbleBatch failed: %v", err)
	}
	if resp.Accepted != 2 || resp.Ignored != 0 {
		t.Errorf("expected 2 accepted, 0 ignored, got %d/%d", resp.Accepted, resp.Ignored)
	}
	if len(resp.Scrobbles) != 2 {
		t.Fatalf("expected 2 scrobble entries, got %d", len(resp.Scrobbles))
	}
	if resp.Scrobbles[1].Track != "Let It Be" {
		t.Errorf("unexpected second entry: %+v", resp.Scrobbles[1])
	}
}

// TestScrobbleService_ScrobbleBatch_Empty tests submitting an empty batch.
func TestScrobbleService_ScrobbleBatch_Empty(t *testing.T) {
	stub := newStubAPI(t)
	client := stub.client(t, Config{SessionKey: "test-session"})

	resp, err := client.Scrobble().ScrobbleBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if resp.Accepted != 0 || len(resp.Scrobbles) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
	if stub.total() != 0 {
		t.Errorf("expected no requests for an empty batch, got %d", stub.total())
	}
}

// TestScrobbleService_ScrobbleBatch_Truncates tests the batch size cap.
func TestScrobbleService_ScrobbleBatch_Truncates(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("track.scrobble", func(r *http.Request) string {
		if r.FormValue("track[49]") == "" {
			t.Error("expected track[49] to be present")
		}
		if r.FormValue("track[50]") != "" {
			t.Error("expected batch to be truncated at 50 scrobbles")
		}
		return okXML(`<scrobbles accepted="50" ignored="0"></scrobbles>`)
	})

	scrobbles := make([]Scrobble, 60)
	for i := range scrobbles {
		scrobbles[i] = Scrobble{
			Track:     TrackInfo{Artist: "Artist", Track: "Track " + strconv.Itoa(i)},
			Timestamp: time.Now(),
		}
	}

	client := stub.client(t, Config{SessionKey: "test-session"})
	resp, err := client.Scrobble().ScrobbleBatch(context.Background(), scrobbles)
	if err != nil {
		t.Fatalf("ScrobbleBatch failed: %v", err)
	}
	if resp.Accepted != 50 {
		t.Errorf("expected 50 accepted, got %d", resp.Accepted)
	}
}
