package lastfm

import (
	"context"
	"fmt"
)

// AuthService provides authentication operations for the Last.fm API.
type AuthService struct {
	client *Client
}

// Token represents an authentication token from auth.getToken.
type Token struct {
	Token string // The authentication token
}

// Session represents an authenticated session from auth.getSession.
type Session struct {
	Key        string // Session key for authenticated requests
	Username   string // Last.fm username
	Subscriber bool   // Whether user is a subscriber
}

// GetToken requests an authentication token from Last.fm.
//
// This is the first step in the authentication flow. After obtaining a token,
// the user must authorize it by visiting the URL returned by GetAuthURL.
//
// Example:
//
//	token, err := client.Auth().GetToken(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Visit:", client.Auth().GetAuthURL(token.Token))
func (a *AuthService) GetToken(ctx context.Context) (*Token, error) {
	body, err := a.client.fetch(ctx, "auth.getToken", nil, callOpts{signed: true, noCache: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token string `xml:"token"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse auth.getToken response: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("lastfm: auth.getToken returned an empty token")
	}
	return &Token{Token: resp.Token}, nil
}

// GetAuthURL returns the URL where users authorize the token.
//
// After calling GetToken, direct the user to this URL to authorize
// the application. Once authorized, call GetSession to exchange the
// token for a session key.
func (a *AuthService) GetAuthURL(token string) string {
	return "https://www.last.fm/api/auth/?api_key=" + a.client.apiKey + "&token=" + token
}

// GetSession exchanges an authorized token for a session key.
//
// After the user has authorized the token at the URL from GetAuthURL,
// call this method to exchange the token for a permanent session key.
// The session key should be stored and used for all future authenticated
// requests.
//
// Example:
//
//	session, err := client.Auth().GetSession(ctx, token.Token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetSessionKey(session.Key)
//	// Store session.Key for future use
func (a *AuthService) GetSession(ctx context.Context, token string) (*Session, error) {
	params := map[string]string{"token": token}
	body, err := a.client.fetch(ctx, "auth.getSession", params, callOpts{signed: true, noCache: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Session struct {
			Name       string `xml:"name"`
			Key        string `xml:"key"`
			Subscriber string `xml:"subscriber"`
		} `xml:"session"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse auth.getSession response: %w", err)
	}
	if resp.Session.Key == "" {
		return nil, fmt.Errorf("lastfm: auth.getSession returned an empty session key")
	}
	return &Session{
		Key:        resp.Session.Key,
		Username:   resp.Session.Name,
		Subscriber: bool01(resp.Session.Subscriber),
	}, nil
}
