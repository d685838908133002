package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const genreRowsSQL = `
	SELECT
		g.id,
		g.name,
		g.description,
		g.modified,
		m.id,
		m.title,
		m.rating
	FROM content.genres g
		LEFT JOIN content.movie_genre mg ON mg.genre_id = g.id
		LEFT JOIN content.movies m ON m.id = mg.movie_id
	WHERE g.id = ANY($1::uuid[])
`

type GenreExtractor struct {
	db *pgxpool.Pool
}

func NewGenreExtractor(pool *ConnectionPool) *GenreExtractor {
	return &GenreExtractor{db: pool.GetConn()}
}

func (e *GenreExtractor) ListChanged(ctx context.Context, watermark time.Time, limit, offset int) ([]etl.Change, error) {
	return listChanged(ctx, e.db, "content.genres", watermark, limit, offset)
}

func (e *GenreExtractor) Fetch(ctx context.Context, ids []uuid.UUID) ([]domain.GenreRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := e.db.Query(ctx, genreRowsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GenreRow, error) {
		var (
			r       domain.GenreRow
			movieID pgtype.UUID
		)
		err := row.Scan(&r.GenreID, &r.Name, &r.Description, &r.Modified, &movieID, &r.MovieTitle, &r.MovieRating)
		r.MovieID = uuidPtr(movieID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan genre row: %w", err)
	}
	return result, nil
}

var _ etl.Extractor[domain.GenreRow] = (*GenreExtractor)(nil)
