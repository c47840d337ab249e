// Package omdb is a client for the search endpoint of the Open Movie Database.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// DefaultBaseURL is the public OMDb API endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// wildcardQuery is sent when the caller gives no search text.
const wildcardQuery = "*"

// Settings holds the base URL and API key used for a request.
type Settings struct {
	BaseURL string
	APIKey  string
}

// SettingsFunc returns the settings to use for the next request.
type SettingsFunc func() Settings

// StaticSettings returns a SettingsFunc that always yields s.
func StaticSettings(s Settings) SettingsFunc {
	return func() Settings { return s }
}

// SearchResponse is the body returned by an OMDb search. A failed search
// comes back as 200 with Response "False" and Error set.
type SearchResponse struct {
	Search       []Movie `json:"Search"`
	TotalResults string  `json:"totalResults,omitempty"`
	Response     string  `json:"Response"`
	Error        string  `json:"Error,omitempty"`
}

// Movie is a single OMDb search result kept exactly as sent, so it can be
// forwarded without losing or inventing fields.
type Movie = json.RawMessage

// Getter performs a JSON GET. *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values, target any) error
}

// Client queries the OMDb search endpoint.
type Client struct {
	http     Getter
	settings SettingsFunc
}

// NewClient creates an OMDb client.
func NewClient(http Getter, settings SettingsFunc) *Client {
	return &Client{http: http, settings: settings}
}

// Search looks up movies by title and optional year. An empty query is sent
// as the wildcard "*". The type filter is always "movie".
func (c *Client) Search(ctx context.Context, query, year string) (*SearchResponse, error) {
	s := c.settings()
	if query == "" {
		query = wildcardQuery
	}

	params := url.Values{}
	params.Set("apikey", s.APIKey)
	params.Set("s", query)
	params.Set("y", year)
	params.Set("type", "movie")

	var resp SearchResponse
	if err := c.http.GetJSON(ctx, s.BaseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search omdb: %w", err)
	}
	return &resp, nil
}
