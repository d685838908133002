package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/testcontainers/testcontainers-go"
	tces "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SearchNode is a single-node Elasticsearch the loaders can write to.
// Its helpers read the indexes back to assert on what was loaded.
type SearchNode struct {
	Container testcontainers.Container
	Address   string

	client *elasticsearch.Client
}

// NewSearchNode starts the container and terminates it when tb finishes.
func NewSearchNode(ctx context.Context, tb testing.TB) *SearchNode {
	tb.Helper()

	container, err := tces.Run(ctx,
		"docker.elastic.co/elasticsearch/elasticsearch:8.12.0",
		tces.WithPassword(""),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").
				WithPort("9200").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		tb.Fatalf("failed to get elasticsearch host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("failed to get elasticsearch port: %v", err)
	}
	address := fmt.Sprintf("http://%s:%s", host, port.Port())

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{address}})
	if err != nil {
		tb.Fatalf("failed to create elasticsearch client: %v", err)
	}

	return &SearchNode{Container: container, Address: address, client: client}
}

// Addresses is the value ES_ADDRESSES would hold for this node.
func (n *SearchNode) Addresses() []string {
	return []string{n.Address}
}

// Count refreshes index and returns its document count.
func (n *SearchNode) Count(ctx context.Context, index string) (int64, error) {
	if err := n.refresh(ctx, index); err != nil {
		return 0, err
	}

	res, err := n.client.Count(n.client.Count.WithContext(ctx), n.client.Count.WithIndex(index))
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count %s: %s", index, res.String())
	}

	var body struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

// Source returns the stored body of a document, or false when it does not exist.
func (n *SearchNode) Source(ctx context.Context, index, id string) (map[string]any, bool, error) {
	res, err := n.client.Get(index, id, n.client.Get.WithContext(ctx))
	if err != nil {
		return nil, false, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if res.IsError() {
		return nil, false, fmt.Errorf("get %s/%s: %s", index, id, res.String())
	}

	var body struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, false, err
	}
	return body.Source, true, nil
}

func (n *SearchNode) refresh(ctx context.Context, index string) error {
	res, err := n.client.Indices.Refresh(
		n.client.Indices.Refresh.WithContext(ctx),
		n.client.Indices.Refresh.WithIndex(index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("refresh %s: %s", index, res.String())
	}
	return nil
}
