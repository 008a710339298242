// Package lastfm provides a client library for the Last.fm API 2.0.
//
// # Overview
//
// This package implements a Go client for the Last.fm XML API. It covers
// the entity surface (users, artists, albums, tracks, tags, events, venues,
// playlists, libraries, weekly charts) as well as authentication and
// scrobbling, with context support, structured errors and retry logic.
//
// Three mechanisms shape the API:
//
//   - Canonical entities. Every domain object is materialized through the
//     client's registry, so two lookups of the same logical entity return
//     the same instance and data learned from different responses
//     accumulates on it.
//   - Lazy pagination. Listings that span pages come back as a
//     lazylist.List whose pages are fetched on demand; iterating twice
//     never refetches what is already materialized.
//   - Memoized properties. Expensive per-entity listings are cached on
//     the instance and invalidated by the mutations that affect them.
//
// # Installation
//
//	go get github.com/jfmyers9/lastfm
//
// # Quick Start
//
// Create a client with your API credentials:
//
//	import "github.com/jfmyers9/lastfm/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:    "your-api-key",
//	    APISecret: "your-api-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Then walk the entity graph:
//
//	user, err := client.User("rj")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tracks, err := user.TopTracks(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range tracks {
//	    fmt.Println(t.Artist().Name(), "-", t.Name())
//	}
//
// # Authentication
//
// Last.fm uses a token-based authentication flow:
//
//  1. Get a token from Last.fm
//  2. Direct the user to authorize the token
//  3. Exchange the token for a session key
//  4. Store and reuse the session key
//
// Example:
//
//	token, err := client.Auth().GetToken(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Please visit:", client.Auth().GetAuthURL(token.Token))
//	fmt.Print("Press enter after authorizing...")
//	fmt.Scanln()
//
//	session, err := client.Auth().GetSession(ctx, token.Token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetSessionKey(session.Key)
//
// Operations that need a session fail with ErrAuthRequired before any
// network access when no session key is set.
//
// # Scrobbling
//
// Once authenticated, you can scrobble tracks and update now playing status:
//
//	track := lastfm.TrackInfo{
//	    Artist: "The Beatles",
//	    Track:  "Yesterday",
//	    Album:  "Help!",
//	}
//	_, err := client.Scrobble().UpdateNowPlaying(ctx, track)
//
//	_, err = client.Scrobble().SubmitScrobble(ctx, track, time.Now())
//
//	resp, err := client.Scrobble().ScrobbleBatch(ctx, scrobbles)
//
// # Error Handling
//
// The package provides structured errors with retry information:
//
//	tracks, err := user.TopTracks(ctx)
//	if err != nil {
//	    var lastfmErr *lastfm.Error
//	    if errors.As(err, &lastfmErr) {
//	        if lastfmErr.Temporary() {
//	            // Retry the request
//	        }
//	    }
//	}
//
// # Context Support
//
// All API methods accept a context.Context for cancellation and timeouts:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	friends, err := user.Friends(ctx)
//
// # Configuration
//
// The client can be configured with custom HTTP clients, base URLs (for
// testing), response caches, a shared entity registry and a logger:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    APISecret:  "your-api-secret",
//	    SessionKey: "saved-session-key",
//	    HTTPClient: &http.Client{Timeout: 30 * time.Second},
//	    Cache:      myCache,   // implements lastfm.ResponseCache
//	    Logger:     &myLogger, // *zerolog.Logger
//	})
//
// # Last.fm API Documentation
//
// For more information about the Last.fm API:
// https://www.last.fm/api
package lastfm
