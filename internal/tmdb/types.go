package tmdb

import "encoding/json"

// GenreListResponse represents the response from /genre/movie/list.
// Genres is a pointer so a missing field can be told apart from an empty list.
type GenreListResponse struct {
	Genres *[]Genre `json:"genres"`
}

// Genre, Language, Country and Movie are records kept exactly as TMDB sent
// them. They are forwarded without decoding, so unknown fields survive and
// absent fields stay absent.
type (
	Genre    = json.RawMessage
	Language = json.RawMessage
	Country  = json.RawMessage
	Movie    = json.RawMessage
)

// PersonSearchResponse represents the response from /search/person
type PersonSearchResponse struct {
	Page         int      `json:"page"`
	Results      []Person `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Person represents a person search candidate
type Person struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	OriginalName       string  `json:"original_name,omitempty"`
	KnownForDepartment string  `json:"known_for_department,omitempty"`
	Popularity         float64 `json:"popularity"`
	ProfilePath        *string `json:"profile_path"`
	Adult              bool    `json:"adult"`
	Gender             int     `json:"gender"`
}

// MovieListResponse represents the response from /search/movie and /discover/movie
type MovieListResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
