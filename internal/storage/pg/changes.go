package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// listChanged pages through table by (modified, id). table is never user input.
func listChanged(ctx context.Context, db *pgxpool.Pool, table string, watermark time.Time, limit, offset int) ([]etl.Change, error) {
	sql := fmt.Sprintf(`
		SELECT id, modified
		FROM %s
		WHERE modified >= $1
		ORDER BY modified, id
		LIMIT $2
		OFFSET $3
	`, table)

	rows, err := db.Query(ctx, sql, watermark, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed %s: %w", table, err)
	}

	changes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (etl.Change, error) {
		var c etl.Change
		err := row.Scan(&c.ID, &c.Modified)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan changed %s: %w", table, err)
	}
	return changes, nil
}

func uuidPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func datePtr(v pgtype.Date) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
