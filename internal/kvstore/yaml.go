package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLStore keeps every key in one YAML document and rewrites the whole file
// on each change.
type YAMLStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

var _ Store = (*YAMLStore)(nil)

type yamlDocument struct {
	Values map[string]string `yaml:"values"`
}

// OpenYAML reads the document at path. A missing file is an empty store.
func OpenYAML(path string) (*YAMLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open yaml store: empty path")
	}
	store := &YAMLStore{path: path, values: map[string]string{}}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(rawData, &doc); err != nil {
		return nil, fmt.Errorf("parse store yaml: %w", err)
	}
	for k, v := range doc.Values {
		store.values[k] = v
	}
	return store, nil
}

// Get returns the value for key and whether it was present.
func (s *YAMLStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores key and flushes the document to disk.
func (s *YAMLStore) Set(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.writeLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and flushes the document to disk.
func (s *YAMLStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.writeLocked(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// Close is a no-op; every change is already on disk.
func (s *YAMLStore) Close() error {
	return nil
}

func (s *YAMLStore) writeLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	serialized, err := yaml.Marshal(yamlDocument{Values: s.values})
	if err != nil {
		return fmt.Errorf("marshal store yaml: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(serialized); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
