// Package gateway forwards configuration and movie queries to TMDB or OMDb
// and returns their results without normalizing them.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/marco/movieFetcher/internal/omdb"
	"github.com/marco/movieFetcher/internal/tmdb"
)

// TMDB is the subset of the TMDB client used by the gateway.
type TMDB interface {
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	Languages(ctx context.Context) ([]tmdb.Language, error)
	Countries(ctx context.Context) ([]tmdb.Country, error)
	SearchPerson(ctx context.Context, name string) ([]tmdb.Person, error)
	SearchMovies(ctx context.Context, query string, filter tmdb.MovieFilter) ([]tmdb.Movie, error)
	DiscoverMovies(ctx context.Context, filter tmdb.MovieFilter) ([]tmdb.Movie, error)
}

// OMDb is the subset of the OMDb client used by the gateway.
type OMDb interface {
	Search(ctx context.Context, query, year string) (*omdb.SearchResponse, error)
}

// ConfigurationResponse combines the TMDB lookup lists a client needs to
// build its filter form.
type ConfigurationResponse struct {
	Genres    []tmdb.Genre    `json:"genres"`
	Languages []tmdb.Language `json:"languages"`
	Countries []tmdb.Country  `json:"countries"`
}

// Service answers configuration and movie queries. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	tmdb   TMDB
	omdb   OMDb
	logger *slog.Logger
}

// NewService creates a Service backed by the given provider clients.
func NewService(tmdbClient TMDB, omdbClient OMDb, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tmdb: tmdbClient, omdb: omdbClient, logger: logger}
}

// Configuration fetches genres, languages and countries from TMDB, in that
// order. Any failure fails the whole call; no partial result is returned.
func (s *Service) Configuration(ctx context.Context) (*ConfigurationResponse, error) {
	genres, err := s.tmdb.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	languages, err := s.tmdb.Languages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	countries, err := s.tmdb.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &ConfigurationResponse{
		Genres:    orEmpty(genres),
		Languages: orEmpty(languages),
		Countries: orEmpty(countries),
	}, nil
}

// Movies runs q against the provider it selects.
func (s *Service) Movies(ctx context.Context, q MovieQuery) (*MovieList, error) {
	if q.Source() == SourceTMDB {
		return s.tmdbMovies(ctx, q)
	}
	return s.omdbMovies(ctx, q)
}

func (s *Service) tmdbMovies(ctx context.Context, q MovieQuery) (*MovieList, error) {
	filter := q.tmdbFilter()

	if q.WithCast != "" {
		personID, found, err := s.resolvePerson(ctx, q.WithCast)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch movies: %w", err)
		}
		if found {
			filter.WithCast = personID
		} else {
			s.logger.Debug("cast filter dropped, no matching person", "with_cast", q.WithCast)
		}
	}

	var (
		movies []tmdb.Movie
		err    error
	)
	if q.SearchQuery != "" {
		movies, err = s.tmdb.SearchMovies(ctx, q.SearchQuery, filter)
	} else {
		movies, err = s.tmdb.DiscoverMovies(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	s.logger.Debug("tmdb movie query complete",
		"search", q.SearchQuery != "",
		"with_cast", filter.WithCast,
		"results", len(movies),
	)
	return newTMDBList(movies), nil
}

// resolvePerson returns the ID of the first person TMDB lists for name.
// The first candidate is taken as-is, without ranking.
func (s *Service) resolvePerson(ctx context.Context, name string) (string, bool, error) {
	people, err := s.tmdb.SearchPerson(ctx, name)
	if err != nil {
		return "", false, err
	}
	if len(people) == 0 {
		return "", false, nil
	}
	return strconv.Itoa(people[0].ID), true, nil
}

func (s *Service) omdbMovies(ctx context.Context, q MovieQuery) (*MovieList, error) {
	resp, err := s.omdb.Search(ctx, q.SearchQuery, q.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	if resp.Error != "" {
		s.logger.Debug("omdb search returned no results", "reason", resp.Error)
	}
	return newOMDbList(resp.Search), nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
