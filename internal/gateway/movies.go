package gateway

import (
	"encoding/json"

	"github.com/marco/movieFetcher/internal/omdb"
	"github.com/marco/movieFetcher/internal/tmdb"
)

// MovieList holds provider-native movie records. Exactly one of TMDB or
// OMDb is populated, as indicated by Source. The two schemas differ and are
// not normalized.
type MovieList struct {
	Source Source
	TMDB   []tmdb.Movie
	OMDb   []omdb.Movie
}

func newTMDBList(movies []tmdb.Movie) *MovieList {
	if movies == nil {
		movies = []tmdb.Movie{}
	}
	return &MovieList{Source: SourceTMDB, TMDB: movies}
}

func newOMDbList(movies []omdb.Movie) *MovieList {
	if movies == nil {
		movies = []omdb.Movie{}
	}
	return &MovieList{Source: SourceOMDb, OMDb: movies}
}

// Len returns the number of movies in the list.
func (l *MovieList) Len() int {
	if l.Source == SourceTMDB {
		return len(l.TMDB)
	}
	return len(l.OMDb)
}

// MarshalJSON encodes the list as the provider's own array.
func (l *MovieList) MarshalJSON() ([]byte, error) {
	if l.Source == SourceTMDB {
		if l.TMDB == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.TMDB)
	}
	if l.OMDb == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.OMDb)
}
