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

const personRowsSQL = `
	SELECT
		p.id,
		p.full_name,
		p.modified,
		pr.name,
		m.id,
		m.title
	FROM content.persons p
		LEFT JOIN content.movie_person_role mpr ON mpr.person_id = p.id
		LEFT JOIN content.person_roles pr ON pr.id = mpr.person_role_id
		LEFT JOIN content.movies m ON m.id = mpr.movie_id
	WHERE p.id = ANY($1::uuid[])
`

type PersonExtractor struct {
	db *pgxpool.Pool
}

func NewPersonExtractor(pool *ConnectionPool) *PersonExtractor {
	return &PersonExtractor{db: pool.GetConn()}
}

func (e *PersonExtractor) ListChanged(ctx context.Context, watermark time.Time, limit, offset int) ([]etl.Change, error) {
	return listChanged(ctx, e.db, "content.persons", watermark, limit, offset)
}

func (e *PersonExtractor) Fetch(ctx context.Context, ids []uuid.UUID) ([]domain.PersonRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := e.db.Query(ctx, personRowsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch persons: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PersonRow, error) {
		var (
			r       domain.PersonRow
			movieID pgtype.UUID
		)
		err := row.Scan(&r.PersonID, &r.FullName, &r.Modified, &r.RoleName, &movieID, &r.MovieTitle)
		r.MovieID = uuidPtr(movieID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan person row: %w", err)
	}
	return result, nil
}

var _ etl.Extractor[domain.PersonRow] = (*PersonExtractor)(nil)
