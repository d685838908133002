package transform

import (
	"log/slog"

	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/google/uuid"
)

type MovieTransformer struct{}

func NewMovieTransformer() *MovieTransformer {
	return &MovieTransformer{}
}

func (t *MovieTransformer) Transform(rows []domain.MovieRow) []domain.Movie {
	groups := GroupRows(rows, func(r domain.MovieRow) uuid.UUID { return r.MovieID })

	movies := make([]domain.Movie, 0, len(groups))
	for _, g := range groups {
		movies = append(movies, buildMovie(g))
	}
	return movies
}

func buildMovie(rows []domain.MovieRow) domain.Movie {
	first := rows[0]
	m := domain.Movie{
		ID:          first.MovieID,
		Title:       first.Title,
		Description: deref(first.Description),
		IMDbRating:  deref(first.Rating),
		Type:        deref(first.Type),
		Modified:    first.Modified,
	}
	if first.CreationDate != nil {
		m.CreationDate = first.CreationDate.Format(domain.DateLayout)
	}

	genres := newUniqueByID[domain.GenreRef]()
	actors := newUniqueByID[domain.PersonRef]()
	directors := newUniqueByID[domain.PersonRef]()
	writers := newUniqueByID[domain.PersonRef]()

	for _, r := range rows {
		if r.GenreID != nil {
			genres.add(*r.GenreID, domain.GenreRef{ID: *r.GenreID, Name: deref(r.GenreName)})
		}

		if r.PersonID == nil {
			continue
		}
		person := domain.PersonRef{ID: *r.PersonID, Name: deref(r.PersonFullName)}

		switch domain.ParseRole(deref(r.PersonRole)) {
		case domain.RoleActor:
			actors.add(person.ID, person)
		case domain.RoleDirector:
			directors.add(person.ID, person)
		case domain.RoleWriter:
			writers.add(person.ID, person)
		default:
			slog.Warn("Unknown person role, skipping person",
				"movie_id", r.MovieID,
				"person_id", person.ID,
				"role", deref(r.PersonRole),
			)
		}
	}

	m.Genres = genres.items
	m.Actors = actors.items
	m.Directors = directors.items
	m.Writers = writers.items

	m.GenresNames = names(m.Genres, func(g domain.GenreRef) string { return g.Name })
	m.ActorsNames = names(m.Actors, personName)
	m.DirectorsNames = names(m.Directors, personName)
	m.WritersNames = names(m.Writers, personName)

	return m
}

func personName(p domain.PersonRef) string {
	return p.Name
}
