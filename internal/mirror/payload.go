package mirror

import (
	"fmt"

	"github.com/vmunix/synctower/internal/catalog"
)

// moviePayload is the insert body for a movie.
type moviePayload struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// showPayload is the insert body for a show.
type showPayload struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	FirstAirDate string  `json:"first_air_date"`
}

// payloadFunc maps an item to its insert body.
type payloadFunc func(catalog.Item) any

// payloadFor resolves the mapping for a category.
func payloadFor(c catalog.Category) (payloadFunc, error) {
	switch c {
	case catalog.Movie:
		return func(it catalog.Item) any {
			return moviePayload{
				ID:          it.ID,
				Title:       it.Title,
				PosterPath:  it.PosterPath,
				VoteAverage: it.VoteAverage,
				ReleaseDate: it.Date,
			}
		}, nil
	case catalog.Show:
		return func(it catalog.Item) any {
			return showPayload{
				ID:           it.ID,
				Name:         it.Title,
				PosterPath:   it.PosterPath,
				VoteAverage:  it.VoteAverage,
				FirstAirDate: it.Date,
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, string(c))
	}
}
