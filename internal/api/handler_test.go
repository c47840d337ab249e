package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco/movieFetcher/internal/gateway"
	"github.com/marco/movieFetcher/internal/omdb"
	"github.com/marco/movieFetcher/internal/tmdb"
	"github.com/marco/movieFetcher/internal/upstream"
)

type fakeService struct {
	config    *gateway.ConfigurationResponse
	configErr error
	list      *gateway.MovieList
	moviesErr error
	lastQuery gateway.MovieQuery
	panicMsg  string
}

func (f *fakeService) Configuration(ctx context.Context) (*gateway.ConfigurationResponse, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.config, f.configErr
}

func (f *fakeService) Movies(ctx context.Context, q gateway.MovieQuery) (*gateway.MovieList, error) {
	f.lastQuery = q
	return f.list, f.moviesErr
}

func newTestRouter(svc MovieService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(svc, logger), nil, logger)
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConfig_Success(t *testing.T) {
	svc := &fakeService{config: &gateway.ConfigurationResponse{
		Genres:    []tmdb.Genre{tmdb.Genre(`{"id":28,"name":"Action"}`)},
		Languages: []tmdb.Language{tmdb.Language(`{"iso_639_1":"en","english_name":"English","name":"English"}`)},
		Countries: []tmdb.Country{tmdb.Country(`{"iso_3166_1":"US","english_name":"United States of America"}`)},
	}}

	rec := serve(t, newTestRouter(svc), http.MethodGet, "/api/config/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["genres"], 1)
	assert.Equal(t, "Action", body["genres"][0]["name"])
	assert.Equal(t, "en", body["languages"][0]["iso_639_1"])
	assert.Equal(t, "US", body["countries"][0]["iso_3166_1"])
}

func TestConfig_FailureHasFixedBody(t *testing.T) {
	svc := &fakeService{configErr: fmt.Errorf("failed to load configuration: %w", upstream.ErrUpstream)}

	for _, path := range []string{"/api/config/", "/api/config"} {
		rec := serve(t, newTestRouter(svc), http.MethodGet, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.JSONEq(t, `{"error":"Failed to load configuration"}`, rec.Body.String(), path)
	}
}

func TestMovies_TMDBSuccess(t *testing.T) {
	svc := &fakeService{list: &gateway.MovieList{
		Source: gateway.SourceTMDB,
		TMDB:   []tmdb.Movie{tmdb.Movie(`{"id":550,"title":"Fight Club"}`)},
	}}

	rec := serve(t, newTestRouter(svc), http.MethodGet, "/api/movies/?search_query=fight&genre=18&with_cast=Brad+Pitt")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1, "body must only carry movies")
	require.Len(t, body["movies"], 1)
	assert.Equal(t, "Fight Club", body["movies"][0]["title"])

	assert.Equal(t, "fight", svc.lastQuery.SearchQuery)
	assert.Equal(t, "18", svc.lastQuery.Genre)
	assert.Equal(t, "Brad Pitt", svc.lastQuery.WithCast)
}

func TestMovies_OMDbEmptyList(t *testing.T) {
	svc := &fakeService{list: &gateway.MovieList{Source: gateway.SourceOMDb, OMDb: []omdb.Movie{}}}

	rec := serve(t, newTestRouter(svc), http.MethodGet, "/api/movies?api_source=OMDb")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"movies":[]}`, rec.Body.String())
	assert.Equal(t, gateway.SourceOMDb, svc.lastQuery.Source())
}

func TestMovies_FailureHasFixedBody(t *testing.T) {
	cause := &upstream.StatusError{Status: http.StatusUnauthorized, Body: `{"status_message":"Invalid API key"}`}
	svc := &fakeService{moviesErr: fmt.Errorf("%w: %w", upstream.ErrUpstream, cause)}

	rec := serve(t, newTestRouter(svc), http.MethodGet, "/api/movies/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch movies"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Invalid API key")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeService{}), http.MethodPost, "/api/movies/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeService{}), http.MethodGet, "/api/movies/extra")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeService{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&fakeService{config: &gateway.ConfigurationResponse{}})

	rec := serve(t, router, http.MethodGet, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestRecovery(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeService{panicMsg: "boom"}), http.MethodGet, "/api/config/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(NewHandler(&fakeService{}, logger), []string{"http://localhost:3000"}, logger)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/movies/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHandler_EndToEndWithUpstream(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer provider.Close()

	hc := upstream.New(upstream.Options{})
	svc := gateway.NewService(
		tmdb.NewClient(hc, tmdb.StaticSettings(tmdb.Settings{BaseURL: provider.URL, APIKey: "k"})),
		omdb.NewClient(hc, omdb.StaticSettings(omdb.Settings{BaseURL: provider.URL, APIKey: "k"})),
		nil,
	)

	rec := serve(t, newTestRouter(svc), http.MethodGet, "/api/config/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to load configuration"}`, rec.Body.String())

	rec = serve(t, newTestRouter(svc), http.MethodGet, "/api/movies/?api_source=OMDb")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch movies"}`, rec.Body.String())
}

func TestHandler_MovieRecordsPassThrough(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/discover/movie":
			fmt.Fprint(w, `{"page":1,"results":[{"id":5,"title":"X","extra_field":"kept"}]}`)
		case "/":
			fmt.Fprint(w, `{"Search":[{"Title":"Alien","imdbID":"tt0078748","Ratings":[{"Source":"IMDb"}]}],"Response":"True"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	hc := upstream.New(upstream.Options{})
	svc := gateway.NewService(
		tmdb.NewClient(hc, tmdb.StaticSettings(tmdb.Settings{BaseURL: provider.URL, APIKey: "k"})),
		omdb.NewClient(hc, omdb.StaticSettings(omdb.Settings{BaseURL: provider.URL + "/", APIKey: "k"})),
		nil,
	)
	router := newTestRouter(svc)

	rec := serve(t, router, http.MethodGet, "/api/movies/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"movies":[{"id":5,"title":"X","extra_field":"kept"}]}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "original_title")

	rec = serve(t, router, http.MethodGet, "/api/movies/?api_source=OMDb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"movies":[{"Title":"Alien","imdbID":"tt0078748","Ratings":[{"Source":"IMDb"}]}]}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Poster")
}
