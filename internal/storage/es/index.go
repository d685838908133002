package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// IndexSpec is the settings and mapping an index is created with.
type IndexSpec struct {
	Name     string
	Settings types.IndexSettings
	Mappings types.TypeMapping
}

// IndexManager creates the indexes the loaders write to.
type IndexManager struct {
	client *elasticsearch.TypedClient
	specs  []IndexSpec
}

func NewIndexManager(client *Client, specs ...IndexSpec) *IndexManager {
	return &IndexManager{client: client.typed, specs: specs}
}

// Ensure creates every missing index. With recreate, existing indexes are dropped first.
func (m *IndexManager) Ensure(ctx context.Context, recreate bool) error {
	for _, spec := range m.specs {
		if err := m.ensure(ctx, spec, recreate); err != nil {
			return err
		}
	}
	return nil
}

func (m *IndexManager) ensure(ctx context.Context, spec IndexSpec, recreate bool) error {
	exists, err := m.client.Indices.Exists(spec.Name).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index %s exists: %w", spec.Name, err)
	}

	if exists && recreate {
		res, err := m.client.Indices.Delete(spec.Name).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete index %s: %w", spec.Name, err)
		}
		if !res.Acknowledged {
			return fmt.Errorf("deletion of index %s was not acknowledged", spec.Name)
		}
		slog.Info("Index deleted", "index", spec.Name)
		exists = false
	}

	if exists {
		slog.Info("Index already exists", "index", spec.Name)
		return nil
	}

	settings := spec.Settings
	mappings := spec.Mappings
	res, err := m.client.Indices.Create(spec.Name).
		Settings(&settings).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", spec.Name, err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("creation of index %s was not acknowledged", spec.Name)
	}

	slog.Info("Index created successfully", "index", spec.Name)
	return nil
}
