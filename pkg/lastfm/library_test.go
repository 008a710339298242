package lastfm

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestLibrary_ArtistsDepaginated(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("library.getArtists", func(r *http.Request) string {
		if r.FormValue("user") != "rj" {
			t.Errorf("expected user rj, got %q", r.FormValue("user"))
		}
		if r.FormValue("page") == "" {
			return okXML(`<artists user="rj" page="1" totalPages="2">
				<artist><name>Sigur Ros</name><playcount>500</playcount></artist>
			</artists>`)
		}
		return okXML(`<artists user="rj" page="2" totalPages="2">
			<artist><name>Mogwai</name><playcount>400</playcount></artist>
		</artists>`)
	})

	client := stub.client(t, Config{Cache: nopCache{}})
	user, err := client.User("rj")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	ctx := context.Background()
	list, err := user.Library().Artists(ctx)
	if err != nil {
		t.Fatalf("Artists failed: %v", err)
	}
	artists, err := list.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(artists))
	}
	if artists[0].Name() != "Sigur Ros" || artists[1].Name() != "Mogwai" {
		t.Errorf("unexpected artists: %s, %s", artists[0].Name(), artists[1].Name())
	}
	if artists[0].Stats().PlayCount != 500 {
		t.Errorf("expected playcount 500, got %d", artists[0].Stats().PlayCount)
	}

	// The memoized sequence is reused, with no new fetches.
	again, err := user.Library().Artists(ctx)
	if err != nil {
		t.Fatalf("second Artists failed: %v", err)
	}
	if again != list {
		t.Error("expected memoized sequence instance")
	}
	if got := stub.count("library.getArtists"); got != 2 {
		t.Errorf("expected 2 page fetches, got %d", got)
	}
}

func TestLibrary_ListingErrorPropagates(t *testing.T) {
	stub := newStubAPI(t)
	stub.handle("library.getTracks", func(r *http.Request) string {
		if r.FormValue("page") == "" {
			return okXML(`<tracks user="rj" page="1" totalPages="2">
				<track><name>Helicon 1</name><artist><name>Mogwai</name></artist></track>
			</tracks>`)
		}
		return errorXML(ErrCodeOperationFailed, "Operation failed")
	})

	client := stub.client(t, Config{Cache: nopCache{}})
	user, err := client.User("rj")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	ctx := context.Background()
	list, err := user.Library().Tracks(ctx)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}

	// Page 1 items are readable; the failure surfaces past them.
	first, err := list.At(0)
	if err != nil {
		t.Fatalf("unexpected error on first item: %v", err)
	}
	if first.Name() != "Helicon 1" {
		t.Errorf("unexpected first track: %q", first.Name())
	}

	var lfmErr *Error
	if _, err := list.At(1); !errors.As(err, &lfmErr) || lfmErr.Code != ErrCodeOperationFailed {
		t.Errorf("expected operation failed error past page 1, got %v", err)
	}
}

func TestLibrary_AddArtistInvalidatesListing(t *testing.T) {
	stub := newStubAPI(t)
	artists := `<artist><name>Mogwai</name></artist>`
	stub.handle("library.getArtists", func(r *http.Request) string {
		return okXML(`<artists user="rj" page="1" totalPages="1">` + artists + `</artists>`)
	})
	stub.handle("library.addArtist", func(r *http.Request) string {
		if r.FormValue("artist") != "Low" {
			t.Errorf("expected artist Low, got %q", r.FormValue("artist"))
		}
		artists += `<artist><name>Low</name></artist>`
		return okXML(``)
	})

	client := stub.client(t, Config{SessionKey: "sk", Cache: nopCache{}})
	user, err := client.User("rj")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	library := user.Library()

	ctx := context.Background()
	before, err := library.Artists(ctx)
	if err != nil {
		t.Fatalf("Artists failed: %v", err)
	}
	if known, _ := before.All(); len(known) != 1 {
		t.Fatalf("expected 1 artist before add, got %d", len(known))
	}

	low, err := client.Artist("Low")
	if err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	if err := library.AddArtist(ctx, low); err != nil {
		t.Fatalf("AddArtist failed: %v", err)
	}

	after, err := library.Artists(ctx)
	if err != nil {
		t.Fatalf("Artists after add failed: %v", err)
	}
	if after == before {
		t.Fatal("expected a fresh sequence after invalidation")
	}
	refreshed, err := after.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(refreshed) != 2 || refreshed[1].Name() != "Low" {
		t.Errorf("expected refreshed listing with Low, got %v", refreshed)
	}
}

func TestLibrary_AddRequiresSession(t *testing.T) {
	stub := newStubAPI(t)
	client := stub.client(t, Config{})
	user, err := client.User("rj")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	artist, err := client.Artist("Low")
	if err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	if err := user.Library().AddArtist(context.Background(), artist); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
	if stub.total() != 0 {
		t.Errorf("expected no requests without a session, got %d", stub.total())
	}
}
