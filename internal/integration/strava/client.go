package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
	apiBase  = "https://www.strava.com/api/v3"

	// RefreshSafetyMargin renews tokens slightly before they expire so an
	// API call never races the expiry.
	RefreshSafetyMargin = 90 * time.Second
)

// Activity is the subset of a Strava activity the app stores.
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SportType   string    `json:"sport_type"`
	Distance    float64   `json:"distance"`
	MovingTime  int       `json:"moving_time"`
	ElapsedTime int       `json:"elapsed_time"`
	StartDate   time.Time `json:"start_date"`
}

// TokenInfo is the result of a code exchange or refresh.
type TokenInfo struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	AthleteID    string
}

// Client wraps the Strava OAuth flow and the small part of the REST API the
// app needs.
type Client struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

// NewClient creates a Strava client. redirectURL must match the app's
// configured callback on Strava's side.
func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read,activity:read_all"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiBaseURL: apiBase,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.conf.ClientID != "" && c.conf.ClientSecret != ""
}

// AuthCodeURL builds the consent URL the user is redirected to.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// Exchange trades an authorization code for tokens. Strava piggybacks the
// athlete object onto the token response; its id becomes the external user id.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("strava code exchange failed: %w", err)
	}

	info := tokenInfoFrom(token)
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			info.AthleteID = strconv.FormatInt(int64(id), 10)
		}
	}
	return info, nil
}

// Refresh renews an access token using the stored refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := c.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute), // force a refresh
	})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("strava token refresh failed: %w", err)
	}
	return tokenInfoFrom(token), nil
}

// ListActivities fetches one page of the athlete's activities, newest first.
func (c *Client) ListActivities(ctx context.Context, accessToken string, page, perPage int) ([]Activity, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 30
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/athlete/activities?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("strava activities request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("strava activities request returned status %d", resp.StatusCode)
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding strava activities: %w", err)
	}
	return activities, nil
}

func tokenInfoFrom(token *oauth2.Token) *TokenInfo {
	return &TokenInfo{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}
}
