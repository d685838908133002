package es

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

type ClientConfig struct {
	Addresses []string
	Username  string
	Password  string
}

// Client bundles the low-level client used for bulk writes and the typed client
// used for index administration. Both share one configuration.
type Client struct {
	raw   *elasticsearch.Client
	typed *elasticsearch.TypedClient
}

func NewClient(config ClientConfig) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	raw, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	typed, err := elasticsearch.NewTypedClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch typed client: %w", err)
	}

	return &Client{raw: raw, typed: typed}, nil
}
