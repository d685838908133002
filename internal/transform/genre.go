package transform

import (
	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/google/uuid"
)

type GenreTransformer struct{}

func NewGenreTransformer() *GenreTransformer {
	return &GenreTransformer{}
}

func (t *GenreTransformer) Transform(rows []domain.GenreRow) []domain.Genre {
	groups := GroupRows(rows, func(r domain.GenreRow) uuid.UUID { return r.GenreID })

	genres := make([]domain.Genre, 0, len(groups))
	for _, g := range groups {
		first := g[0]
		movies := newUniqueByID[domain.GenreMovie]()
		for _, r := range g {
			if r.MovieID == nil {
				continue
			}
			movies.add(*r.MovieID, domain.GenreMovie{
				ID:         *r.MovieID,
				Title:      deref(r.MovieTitle),
				IMDbRating: deref(r.MovieRating),
			})
		}

		genres = append(genres, domain.Genre{
			ID:          first.GenreID,
			Name:        first.Name,
			Description: deref(first.Description),
			Modified:    first.Modified,
			Movies:      movies.items,
		})
	}
	return genres
}
