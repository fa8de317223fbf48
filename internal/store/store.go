// Package store persists the pipeline's cross-invocation state as
// whole JSON documents: one collection per document, loaded fully at
// phase entry and rewritten in full at phase exit.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document names for the four pipeline stores.
const (
	AnalysisDoc  = "analysis.json"
	DecisionsDoc = "decisions.json"
	SpeechDoc    = "speech.json"
	ManifestDoc  = "manifest.json"
)

// Backend reads and writes whole named documents.
type Backend interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
}

// Dir is the file backend: one JSON file per document under Root.
type Dir struct {
	Root string
}

func (d Dir) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, name))
}

func (d Dir) Write(name string, data []byte) error {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.Root, name), data, 0o644)
}

// Mem is an in-memory backend for tests.
type Mem struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMem() *Mem {
	return &Mem{docs: make(map[string][]byte)}
}

func (m *Mem) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (m *Mem) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := make([]byte, len(data))
	copy(b, data)
	m.docs[name] = b
	return nil
}

// Load reads a document into a slice. A missing, empty, or unreadable
// document returns a nil collection together with the reason; callers
// treat that as an empty starting state and surface a warning.
func Load[T any](be Backend, name string) ([]T, error) {
	b, err := be.Read(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("read %s: %w", name, errEmptyDocument)
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return items, nil
}

var errEmptyDocument = errors.New("empty document")

// Save rewrites a document in full, indented for inspection parity
// with the playback collaborator.
func Save[T any](be Backend, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := be.Write(name, b); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// MergeBy appends items from incoming whose key is not already present
// in existing. Both input orders are preserved; existing entries win.
func MergeBy[T any, K comparable](existing, incoming []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(existing))
	for _, it := range existing {
		seen[key(it)] = struct{}{}
	}
	out := existing
	for _, it := range incoming {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
