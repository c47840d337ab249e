package gateway

import (
	"net/url"

	"github.com/marco/movieFetcher/internal/tmdb"
)

// Source selects the upstream provider for a movie query.
type Source string

const (
	SourceTMDB Source = "TMDB"
	SourceOMDb Source = "OMDb"
)

// DefaultSortBy is the TMDB sort order used when the caller sends none.
const DefaultSortBy = "popularity.desc"

// Query parameter names accepted by the movies endpoint.
const (
	ParamAPISource   = "api_source"
	ParamSearchQuery = "search_query"
	ParamGenre       = "genre"
	ParamLanguage    = "language"
	ParamCountry     = "country"
	ParamYear        = "year"
	ParamMinRating   = "min_rating"
	ParamSortBy      = "sort_by"
	ParamMinRuntime  = "min_runtime"
	ParamMaxRuntime  = "max_runtime"
	ParamWithCast    = "with_cast"
)

// MovieQuery is a caller's movie search intent. Values are forwarded as
// given; none are checked for type or range.
type MovieQuery struct {
	// APISource is "TMDB" (the default) or anything else for OMDb.
	APISource string

	// SearchQuery switches TMDB from discover to text search when non-empty.
	SearchQuery string

	Genre      string
	Language   string
	Country    string
	Year       string
	MinRating  string
	SortBy     string // defaults to DefaultSortBy
	MinRuntime string
	MaxRuntime string

	// WithCast is a person's name, resolved to a TMDB person ID.
	WithCast string
}

// ParseMovieQuery reads a MovieQuery from request query parameters.
// An absent parameter takes its default; a parameter present with an empty
// value stays empty. When a parameter repeats, the last value wins.
func ParseMovieQuery(values url.Values) MovieQuery {
	return MovieQuery{
		APISource:   param(values, ParamAPISource, string(SourceTMDB)),
		SearchQuery: param(values, ParamSearchQuery, ""),
		Genre:       param(values, ParamGenre, ""),
		Language:    param(values, ParamLanguage, ""),
		Country:     param(values, ParamCountry, ""),
		Year:        param(values, ParamYear, ""),
		MinRating:   param(values, ParamMinRating, ""),
		SortBy:      param(values, ParamSortBy, DefaultSortBy),
		MinRuntime:  param(values, ParamMinRuntime, ""),
		MaxRuntime:  param(values, ParamMaxRuntime, ""),
		WithCast:    param(values, ParamWithCast, ""),
	}
}

func param(values url.Values, key, def string) string {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return def
	}
	return vs[len(vs)-1]
}

// Source reports which provider serves q. Only the exact string "TMDB"
// selects TMDB.
func (q MovieQuery) Source() Source {
	if q.APISource == string(SourceTMDB) {
		return SourceTMDB
	}
	return SourceOMDb
}

// tmdbFilter maps q onto TMDB discover parameters. WithCast is left empty;
// it needs a person lookup first.
func (q MovieQuery) tmdbFilter() tmdb.MovieFilter {
	return tmdb.MovieFilter{
		WithGenres:           q.Genre,
		WithOriginalLanguage: q.Language,
		Region:               q.Country,
		PrimaryReleaseYear:   q.Year,
		VoteAverageGte:       q.MinRating,
		SortBy:               q.SortBy,
		RuntimeGte:           q.MinRuntime,
		RuntimeLte:           q.MaxRuntime,
	}
}
