// Package etl moves changed source records into the search index.
//
// A Pipeline pulls ids changed since its checkpoint, enriches them into joined rows,
// folds the rows into documents, buffers them and bulk-loads each full batch.
// Checkpoints only move forward after the sink confirmed a batch.
package etl

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Change is one changed source entity as reported by an Extractor.
type Change struct {
	ID       uuid.UUID
	Modified time.Time
}

// Document is a sink-ready record.
type Document interface {
	DocumentID() string
	ModifiedAt() time.Time
}

// Extractor reads one entity kind from the source.
type Extractor[R any] interface {
	// ListChanged returns entities with modified >= watermark ordered by (modified, id).
	ListChanged(ctx context.Context, watermark time.Time, limit, offset int) ([]Change, error)
	// Fetch returns the joined rows for ids. Every id yields at least one row.
	Fetch(ctx context.Context, ids []uuid.UUID) ([]R, error)
}

type Transformer[R any, D Document] interface {
	Transform(rows []R) []D
}

// TransformFunc adapts a plain function to Transformer.
type TransformFunc[R any, D Document] func(rows []R) []D

func (f TransformFunc[R, D]) Transform(rows []R) []D {
	return f(rows)
}

// Loader writes a batch of documents to the sink as upserts.
// A transport failure is returned as an error. Rejected documents are reported in LoadReport.
type Loader[D Document] interface {
	BulkUpsert(ctx context.Context, docs []D) (*LoadReport, error)
}

type LoadReport struct {
	Total  int
	Failed int
	Errors []ItemError
}

type ItemError struct {
	ID     string
	Status int
	Type   string
	Reason string
}

func (r *LoadReport) OK() bool {
	return r.Failed == 0
}
