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

const movieRowsSQL = `
	SELECT
		m.id,
		m.title,
		m.description,
		m.rating,
		mt.name,
		m.creation_date,
		m.modified,
		pr.name,
		p.id,
		p.full_name,
		g.id,
		g.name
	FROM content.movies m
		LEFT JOIN content.movie_person_role mpr ON m.id = mpr.movie_id
		LEFT JOIN content.person_roles pr ON mpr.person_role_id = pr.id
		LEFT JOIN content.persons p ON mpr.person_id = p.id
		LEFT JOIN content.movie_genre mg ON m.id = mg.movie_id
		LEFT JOIN content.genres g ON mg.genre_id = g.id
		LEFT JOIN content.movie_types mt ON m.type_id = mt.id
	WHERE m.id = ANY($1::uuid[])
`

type MovieExtractor struct {
	db *pgxpool.Pool
}

func NewMovieExtractor(pool *ConnectionPool) *MovieExtractor {
	return &MovieExtractor{db: pool.GetConn()}
}

func (e *MovieExtractor) ListChanged(ctx context.Context, watermark time.Time, limit, offset int) ([]etl.Change, error) {
	return listChanged(ctx, e.db, "content.movies", watermark, limit, offset)
}

// Fetch returns one row per (movie, credit, genre) combination.
func (e *MovieExtractor) Fetch(ctx context.Context, ids []uuid.UUID) ([]domain.MovieRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := e.db.Query(ctx, movieRowsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MovieRow, error) {
		var (
			r            domain.MovieRow
			creationDate pgtype.Date
			personID     pgtype.UUID
			genreID      pgtype.UUID
		)
		err := row.Scan(
			&r.MovieID,
			&r.Title,
			&r.Description,
			&r.Rating,
			&r.Type,
			&creationDate,
			&r.Modified,
			&r.PersonRole,
			&personID,
			&r.PersonFullName,
			&genreID,
			&r.GenreName,
		)
		r.CreationDate = datePtr(creationDate)
		r.PersonID = uuidPtr(personID)
		r.GenreID = uuidPtr(genreID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie row: %w", err)
	}
	return result, nil
}

var _ etl.Extractor[domain.MovieRow] = (*MovieExtractor)(nil)
