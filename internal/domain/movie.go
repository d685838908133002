package domain

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type PersonRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type GenreRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Movie is the denormalized film document stored in the movies index.
type Movie struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	IMDbRating     float64     `json:"imdb_rating"`
	Type           string      `json:"type"`
	CreationDate   string      `json:"creation_date,omitempty"`
	Modified       time.Time   `json:"-"`
	Genres         []GenreRef  `json:"genres"`
	GenresNames    []string    `json:"genres_names"`
	Actors         []PersonRef `json:"actors"`
	ActorsNames    []string    `json:"actors_names"`
	Directors      []PersonRef `json:"directors"`
	DirectorsNames []string    `json:"directors_names"`
	Writers        []PersonRef `json:"writers"`
	WritersNames   []string    `json:"writers_names"`
}

func (m Movie) DocumentID() string {
	return m.ID.String()
}

func (m Movie) ModifiedAt() time.Time {
	return m.Modified
}

// MovieRow is one row of the movie join: a movie with at most one person credit and one genre.
// Relation columns are nil when the movie has no such link.
type MovieRow struct {
	MovieID        uuid.UUID
	Title          string
	Description    *string
	Rating         *float64
	Type           *string
	CreationDate   *time.Time
	Modified       time.Time
	PersonRole     *string
	PersonID       *uuid.UUID
	PersonFullName *string
	GenreID        *uuid.UUID
	GenreName      *string
}
