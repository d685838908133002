package es

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Lines  []string
}

type fakeES struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query().Get("filter_path"),
		Lines:  lines,
	})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func newTestLoader(t *testing.T, fake *fakeES) *Loader[domain.Movie] {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewLoader[domain.Movie](client, "movies")
}

func testMovies() []domain.Movie {
	return []domain.Movie{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Title: "Alpha", Modified: time.Now()},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Title: "Beta", Modified: time.Now()},
	}
}

func TestLoader_BulkUpsertSendsIndexActions(t *testing.T) {
	fake := &fakeES{status: http.StatusOK, body: `{"errors":false}`}
	loader := newTestLoader(t, fake)

	report, err := loader.BulkUpsert(context.Background(), testMovies())

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Total)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/_bulk", req.Path)
	assert.Equal(t, "errors,items.*.error,items.*._id,items.*.status", req.Query)
	require.Len(t, req.Lines, 4)

	var action bulkAction
	require.NoError(t, json.Unmarshal([]byte(req.Lines[0]), &action))
	assert.Equal(t, "movies", action.Index.Index)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", action.Index.ID)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Lines[1]), &doc))
	assert.Equal(t, "Alpha", doc["title"])
	assert.NotContains(t, doc, "modified")
}

func TestLoader_BulkUpsertReportsItemErrors(t *testing.T) {
	fake := &fakeES{status: http.StatusOK, body: `{
		"errors": true,
		"items": [
			{"index": {"_id": "11111111-1111-1111-1111-111111111111", "status": 200}},
			{"index": {"_id": "22222222-2222-2222-2222-222222222222", "status": 400,
				"error": {"type": "mapper_parsing_exception", "reason": "failed to parse field [imdb_rating]"}}}
		]
	}`}
	loader := newTestLoader(t, fake)

	report, err := loader.BulkUpsert(context.Background(), testMovies())

	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", report.Errors[0].ID)
	assert.Equal(t, 400, report.Errors[0].Status)
	assert.Equal(t, "mapper_parsing_exception", report.Errors[0].Type)
}

func TestLoader_BulkUpsertHTTPErrorIsReturned(t *testing.T) {
	fake := &fakeES{status: http.StatusServiceUnavailable, body: `{"error":"unavailable"}`}
	loader := newTestLoader(t, fake)

	report, err := loader.BulkUpsert(context.Background(), testMovies())

	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestLoader_BulkUpsertEmptyBatch(t *testing.T) {
	fake := &fakeES{status: http.StatusOK, body: `{"errors":false}`}
	loader := newTestLoader(t, fake)

	report, err := loader.BulkUpsert(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, fake.requests)
}
