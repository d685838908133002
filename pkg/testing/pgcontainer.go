package testing

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// contentTables are truncated together by Reset.
var contentTables = []string{
	"content.movie_person_role",
	"content.movie_genre",
	"content.movies",
	"content.persons",
	"content.person_roles",
	"content.genres",
	"content.certificates",
	"content.movie_types",
}

type PGConfig struct {
	Database string
	Username string
	Password string
}

var DefaultPGConfig = PGConfig{
	Database: "movies_test_db",
	Username: "test",
	Password: "test",
}

// ContentDB is a postgres container with db/migrations applied.
// ConnString already selects the content schema.
type ContentDB struct {
	Container  testcontainers.Container
	ConnString string

	pool *pgxpool.Pool
}

func NewContentDB(ctx context.Context, cfg PGConfig) (*ContentDB, error) {
	migrations, err := migrationFiles()
	if err != nil {
		return nil, err
	}

	container, err := postgres.Run(ctx,
		"postgres:17.5",
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(migrations...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable", "search_path=content")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to connect to postgres container: %w", err)
	}

	return &ContentDB{
		Container:  container,
		ConnString: connStr,
		pool:       pool,
	}, nil
}

// Exec runs a seed statement.
func (db *ContentDB) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := db.pool.Exec(ctx, sql, args...)
	return err
}

// Reset empties every content table.
func (db *ContentDB) Reset(ctx context.Context) error {
	return db.Exec(ctx, "TRUNCATE "+strings.Join(contentTables, ", ")+" CASCADE")
}

func (db *ContentDB) Close() error {
	db.pool.Close()
	return testcontainers.TerminateContainer(db.Container)
}

// migrationFiles returns the up migrations in apply order.
func migrationFiles() ([]string, error) {
	_, b, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(b), "../..", "db", "migrations")

	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}
