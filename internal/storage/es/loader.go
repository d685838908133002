package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var bulkFilterPath = []string{"errors", "items.*.error", "items.*._id", "items.*.status"}

type bulkAction struct {
	Index bulkActionMeta `json:"index"`
}

type bulkActionMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type bulkResponse struct {
	Errors bool                      `json:"errors"`
	Items  []map[string]bulkItemResp `json:"items"`
}

type bulkItemResp struct {
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *bulkItemError `json:"error,omitempty"`
}

type bulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Loader upserts documents into one index with a single _bulk call per batch.
type Loader[D etl.Document] struct {
	client  *elasticsearch.Client
	index   string
	refresh string
}

type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	refresh string
}

// WithRefresh sets the refresh parameter of bulk calls ("true", "wait_for", "false").
func WithRefresh(refresh string) LoaderOption {
	return func(o *loaderOptions) {
		o.refresh = refresh
	}
}

func NewLoader[D etl.Document](client *Client, index string, opts ...LoaderOption) *Loader[D] {
	o := loaderOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[D]{client: client.raw, index: index, refresh: o.refresh}
}

func (l *Loader[D]) Index() string {
	return l.index
}

// BulkUpsert sends docs as index actions. Transport and HTTP failures are returned as
// errors. Documents rejected by Elasticsearch are counted in the report.
func (l *Loader[D]) BulkUpsert(ctx context.Context, docs []D) (*etl.LoadReport, error) {
	report := &etl.LoadReport{Total: len(docs)}
	if len(docs) == 0 {
		return report, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	sent := 0

	for _, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, etl.ItemError{
				ID:     doc.DocumentID(),
				Type:   "marshal_error",
				Reason: err.Error(),
			})
			continue
		}

		if err := enc.Encode(bulkAction{Index: bulkActionMeta{Index: l.index, ID: doc.DocumentID()}}); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		buf.Write(body)
		buf.WriteByte('\n')
		sent++
	}

	if sent == 0 {
		return report, nil
	}

	req := esapi.BulkRequest{
		Body:       &buf,
		FilterPath: bulkFilterPath,
		Refresh:    l.refresh,
	}

	res, err := req.Do(ctx, l.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}(res.Body)

	if res.IsError() {
		return nil, fmt.Errorf("error in bulk request: %s", res.String())
	}

	var bulkRes bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return nil, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			for _, result := range item {
				if result.Error == nil {
					continue
				}
				report.Failed++
				report.Errors = append(report.Errors, etl.ItemError{
					ID:     result.ID,
					Status: result.Status,
					Type:   result.Error.Type,
					Reason: result.Error.Reason,
				})
			}
		}
	}

	slog.Debug("Bulk request completed",
		"index", l.index,
		"count", len(docs),
		"failed", report.Failed,
	)
	return report, nil
}

var _ etl.Loader[etl.Document] = (*Loader[etl.Document])(nil)
