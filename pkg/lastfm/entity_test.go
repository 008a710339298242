package lastfm

import (
	"encoding/xml"
	"testing"
	"time"
)

func TestArtistRef_BothShapes(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		wantName string
		wantMBID string
	}{
		{
			name:     "nested elements",
			xml:      `<artist><name>Radiohead</name><mbid>a74b1b7f</mbid><url>https://www.last.fm/music/Radiohead</url></artist>`,
			wantName: "Radiohead",
			wantMBID: "a74b1b7f",
		},
		{
			name:     "chardata with mbid attribute",
			xml:      `<artist mbid="a74b1b7f">Radiohead</artist>`,
			wantName: "Radiohead",
			wantMBID: "a74b1b7f",
		},
		{
			name:     "chardata without mbid",
			xml:      `<artist mbid="">The Beatles</artist>`,
			wantName: "The Beatles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref artistRef
			if err := xml.Unmarshal([]byte(tt.xml), &ref); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := ref.name(); got != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, got)
			}
			if got := ref.mbid(); got != tt.wantMBID {
				t.Errorf("expected mbid %q, got %q", tt.wantMBID, got)
			}
		})
	}
}

func TestImagesFromData(t *testing.T) {
	imgs := []imageData{
		{Size: "small", URL: "https://img.example/s.png"},
		{Size: "", URL: "https://img.example/default.png"},
		{Size: "large", URL: "   "},
	}
	m := imagesFromData(imgs)
	if m["small"] != "https://img.example/s.png" {
		t.Errorf("unexpected small image: %q", m["small"])
	}
	// Sizeless images default to medium; blank URLs are dropped.
	if m["medium"] != "https://img.example/default.png" {
		t.Errorf("unexpected medium image: %q", m["medium"])
	}
	if _, ok := m["large"]; ok {
		t.Error("expected blank image URL to be dropped")
	}

	if imagesFromData(nil) != nil {
		t.Error("expected nil map for no images")
	}
}

func TestParseHelpers(t *testing.T) {
	if got := atoi(" 42\n"); got != 42 {
		t.Errorf("atoi: expected 42, got %d", got)
	}
	if got := atoi("not a number"); got != 0 {
		t.Errorf("atoi: expected 0 for garbage, got %d", got)
	}
	if got := atof("0.91"); got != 0.91 {
		t.Errorf("atof: expected 0.91, got %v", got)
	}
	if !bool01("1") || bool01("0") || bool01("") {
		t.Error("bool01: unexpected results")
	}
	if got := unixTime("1108296000"); got.Unix() != 1108296000 {
		t.Errorf("unixTime: expected 1108296000, got %d", got.Unix())
	}
	if !unixTime("").IsZero() {
		t.Error("unixTime: expected zero time for empty input")
	}

	when := parseTime(timeLayoutEvent, "Sat, 16 Jun 2007 19:00:00")
	if when.IsZero() || when.Year() != 2007 || when.Month() != time.June {
		t.Errorf("parseTime: unexpected event time %v", when)
	}
}

func TestArtist_AbsorbMergesNonZeroFields(t *testing.T) {
	stub := newStubAPI(t)
	client := stub.client(t, Config{})

	artist, err := client.Artist("Radiohead")
	if err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}

	// A first record teaches mbid and url.
	artist.absorb(artistData{
		Name: "Radiohead",
		MBID: "a74b1b7f",
		URL:  "https://www.last.fm/music/Radiohead",
	})
	// A later sparser record must not erase what is already known.
	artist.absorb(artistData{
		Name:      "Radiohead",
		Playcount: "120",
	})

	if artist.MBID() != "a74b1b7f" {
		t.Errorf("expected mbid to survive sparse record, got %q", artist.MBID())
	}
	if artist.URL() != "https://www.last.fm/music/Radiohead" {
		t.Errorf("expected url to survive sparse record, got %q", artist.URL())
	}
	if artist.Stats().PlayCount != 120 {
		t.Errorf("expected playcount from latest record, got %d", artist.Stats().PlayCount)
	}
}

func TestPeriodConstants(t *testing.T) {
	periods := []Period{PeriodOverall, Period7Day, Period1Month, Period3Month, Period6Month, Period12Month}
	want := []string{"overall", "7day", "1month", "3month", "6month", "12month"}
	for i, p := range periods {
		if string(p) != want[i] {
			t.Errorf("period %d: expected %q, got %q", i, want[i], p)
		}
	}
}
