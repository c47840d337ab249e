// Package tmdb is a typed client for the endpoints of The Movie Database
// (TMDB) v3 API used by the gateway.
package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/marco/movieFetcher/internal/upstream"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const (
	genreListPath     = "/genre/movie/list"
	languagesPath     = "/configuration/languages"
	countriesPath     = "/configuration/countries"
	personSearchPath  = "/search/person"
	movieSearchPath   = "/search/movie"
	movieDiscoverPath = "/discover/movie"
)

// Settings holds the base URL and API key used for a request.
type Settings struct {
	BaseURL string
	APIKey  string
}

// SettingsFunc returns the settings to use for the next request, allowing
// keys and base URLs to change while the process runs.
type SettingsFunc func() Settings

// StaticSettings returns a SettingsFunc that always yields s.
func StaticSettings(s Settings) SettingsFunc {
	return func() Settings { return s }
}

// Getter performs a JSON GET. *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values, target any) error
}

// Client represents a TMDB API client
type Client struct {
	http     Getter
	settings SettingsFunc
}

// NewClient creates a new TMDB API client
func NewClient(http Getter, settings SettingsFunc) *Client {
	return &Client{http: http, settings: settings}
}

// MovieFilter holds the discover-style filters sent with movie list requests.
// Every filter except WithCast is always sent, empty or not.
type MovieFilter struct {
	WithGenres           string
	WithOriginalLanguage string
	Region               string
	PrimaryReleaseYear   string
	VoteAverageGte       string
	SortBy               string
	RuntimeGte           string
	RuntimeLte           string

	// WithCast is a TMDB person ID; omitted when empty.
	WithCast string
}

// Values encodes the filter as TMDB query parameters.
func (f MovieFilter) Values() url.Values {
	params := url.Values{}
	params.Set("with_genres", f.WithGenres)
	params.Set("with_original_language", f.WithOriginalLanguage)
	params.Set("region", f.Region)
	params.Set("primary_release_year", f.PrimaryReleaseYear)
	params.Set("vote_average.gte", f.VoteAverageGte)
	params.Set("sort_by", f.SortBy)
	params.Set("runtime.gte", f.RuntimeGte)
	params.Set("runtime.lte", f.RuntimeLte)
	if f.WithCast != "" {
		params.Set("with_cast", f.WithCast)
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	s := c.settings()
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", s.APIKey)

	endpoint := strings.TrimRight(s.BaseURL, "/") + path
	return c.http.GetJSON(ctx, endpoint, params, target)
}

// Genres fetches the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var resp GenreListResponse
	if err := c.get(ctx, genreListPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get genres: %w", err)
	}
	if resp.Genres == nil {
		return nil, fmt.Errorf("failed to get genres: %w: response has no genres field", upstream.ErrUpstream)
	}
	return *resp.Genres, nil
}

// Languages fetches the languages TMDB supports.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var languages []Language
	if err := c.get(ctx, languagesPath, nil, &languages); err != nil {
		return nil, fmt.Errorf("failed to get languages: %w", err)
	}
	return languages, nil
}

// Countries fetches the countries TMDB supports.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.get(ctx, countriesPath, nil, &countries); err != nil {
		return nil, fmt.Errorf("failed to get countries: %w", err)
	}
	return countries, nil
}

// SearchPerson searches people by name. Results keep TMDB's ordering.
func (c *Client) SearchPerson(ctx context.Context, name string) ([]Person, error) {
	params := url.Values{}
	params.Set("query", name)

	var resp PersonSearchResponse
	if err := c.get(ctx, personSearchPath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search person: %w", err)
	}
	return resp.Results, nil
}

// SearchMovies runs a text search. The filters are sent along even though
// the search endpoint ignores most of them.
func (c *Client) SearchMovies(ctx context.Context, query string, filter MovieFilter) ([]Movie, error) {
	params := filter.Values()
	params.Set("query", query)

	var resp MovieListResponse
	if err := c.get(ctx, movieSearchPath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return resp.Results, nil
}

// DiscoverMovies lists movies matching filter.
func (c *Client) DiscoverMovies(ctx context.Context, filter MovieFilter) ([]Movie, error) {
	var resp MovieListResponse
	if err := c.get(ctx, movieDiscoverPath, filter.Values(), &resp); err != nil {
		return nil, fmt.Errorf("failed to discover movies: %w", err)
	}
	return resp.Results, nil
}
