// Package kvstore provides the durable key-value stores Tally keeps its
// pending-event snapshot in.
package kvstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store is a small durable string map. Set must not return before the value
// is on disk.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendYAML   = "yaml"

	sqliteFileName = "tally.db"
	yamlFileName   = "store.yaml"
)

// Open creates the named backend inside dir.
func Open(ctx context.Context, backend, dir string) (Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("open store: data dir is empty")
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(dir, sqliteFileName))
	case BackendYAML:
		return OpenYAML(filepath.Join(dir, yamlFileName))
	default:
		return nil, fmt.Errorf("open store: unknown backend %q", backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}
