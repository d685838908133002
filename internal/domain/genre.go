package domain

import (
	"time"

	"github.com/google/uuid"
)

type GenreMovie struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	IMDbRating float64   `json:"imdb_rating"`
}

type Genre struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Modified    time.Time    `json:"-"`
	Movies      []GenreMovie `json:"movies"`
}

func (g Genre) DocumentID() string {
	return g.ID.String()
}

func (g Genre) ModifiedAt() time.Time {
	return g.Modified
}

type GenreRow struct {
	GenreID     uuid.UUID
	Name        string
	Description *string
	Modified    time.Time
	MovieID     *uuid.UUID
	MovieTitle  *string
	MovieRating *float64
}
