package redis

import (
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the adapters touch.
const DefaultPrefix = "polyglot:"

// Connect parses a connection identity (redis://[:password@]host:port/db) into a client.
func Connect(url string) (*backend.Client, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return backend.NewClient(opts), nil
}
