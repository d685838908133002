package es

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	pkgtesting "github.com/DjordjeVuckovic/movies-etl/pkg/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexManager_EnsureAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping elasticsearch integration test in short mode")
	}
	ctx := context.Background()
	node := pkgtesting.NewSearchNode(ctx, t)

	client, err := NewClient(ClientConfig{Addresses: node.Addresses()})
	require.NoError(t, err)

	manager := NewIndexManager(client, MoviesIndex("movies"), GenresIndex("genres"), PersonsIndex("persons"))
	require.NoError(t, manager.Ensure(ctx, false))
	// second run is a no-op
	require.NoError(t, manager.Ensure(ctx, false))

	assert.True(t, NewHealthChecker(client).Healthy(ctx))

	loader := NewLoader[domain.Movie](client, "movies", WithRefresh("true"))
	movie := domain.Movie{
		ID:             uuid.New(),
		Title:          "Alpha",
		IMDbRating:     7.5,
		Type:           "movie",
		CreationDate:   "1999-03-31",
		Modified:       time.Now(),
		Genres:         []domain.GenreRef{{ID: uuid.New(), Name: "Drama"}},
		GenresNames:    []string{"Drama"},
		Actors:         []domain.PersonRef{},
		ActorsNames:    []string{},
		Directors:      []domain.PersonRef{},
		DirectorsNames: []string{},
		Writers:        []domain.PersonRef{},
		WritersNames:   []string{},
	}

	report, err := loader.BulkUpsert(ctx, []domain.Movie{movie, movie})
	require.NoError(t, err)
	assert.True(t, report.OK())

	count, err := node.Count(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "same id twice is a single upserted document")

	source, found, err := node.Source(ctx, "movies", movie.DocumentID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alpha", source["title"])
	assert.Equal(t, []any{"Drama"}, source["genres_names"])
	assert.Equal(t, []any{}, source["actors"])
	assert.NotContains(t, source, "modified")

	require.NoError(t, manager.Ensure(ctx, true))
	count, err = node.Count(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
