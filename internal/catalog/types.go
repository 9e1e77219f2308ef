// Package catalog provides a client for the remote catalog listing API.
package catalog

import "fmt"

// PageSize is the number of items the catalog returns per page.
const PageSize = 20

// Category is a kind of catalog content.
type Category string

const (
	Movie Category = "movie"
	Show  Category = "show"
)

// Categories lists every supported category in processing order.
var Categories = []Category{Movie, Show}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case Movie, Show:
		return Category(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Plural returns the display name used in log lines ("movies", "shows").
func (c Category) Plural() string {
	return string(c) + "s"
}

// endpoint returns the listing endpoint name for the category.
func (c Category) endpoint() (string, error) {
	switch c {
	case Movie:
		return "getmovies", nil
	case Show:
		return "gettvshow", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
}

// Item is one catalog entry. Identity is ID within a category.
type Item struct {
	ID          int64
	Title       string  // movie title or show name
	PosterPath  *string // "/abc123.jpg", nil when the catalog sends null
	VoteAverage float64 // 0-10
	Date        string  // movie release_date or show first_air_date, "2024-03-01"
}

// Page is one fetched page of a category listing.
// TotalResults is the catalog's count at fetch time.
type Page struct {
	Category     Category
	Number       int
	Items        []Item
	TotalResults int
}

// listResponse is the catalog listing API response.
type listResponse struct {
	Results      []rawItem `json:"results"`
	TotalResults *int      `json:"total_results"`
}

// rawItem carries the union of movie and show fields.
type rawItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

func (r rawItem) item(c Category) Item {
	it := Item{
		ID:          r.ID,
		PosterPath:  r.PosterPath,
		VoteAverage: r.VoteAverage,
	}
	if c == Show {
		it.Title = r.Name
		it.Date = r.FirstAirDate
	} else {
		it.Title = r.Title
		it.Date = r.ReleaseDate
	}
	return it
}
