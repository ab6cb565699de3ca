// Package cache persists canonical record collections to a JSON file, one
// slot per entity kind. The file is owned exclusively by the entity
// stores; no other component writes it, which keeps the in-memory state
// and the persisted copy from diverging.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// File is a file-backed cache. The zero value is not usable: construct
// it with Open.
type File struct {
	path string

	mu    sync.Mutex
	slots map[models.Kind]json.RawMessage
}

// Open loads the cache at path. A missing file yields an empty cache.
func Open(path string) (*File, error) {
	f := &File{path: path, slots: make(map[models.Kind]json.RawMessage)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if err := json.Unmarshal(data, &f.slots); err != nil {
		// A corrupt cache is stale data, not a fatal condition: start over.
		f.slots = make(map[models.Kind]json.RawMessage)
	}
	return f, nil
}

// Get decodes the slot for kind into out. A missing slot leaves out
// untouched and returns false.
func (f *File) Get(kind models.Kind, out any) (bool, error) {
	f.mu.Lock()
	raw, ok := f.slots[kind]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cache slot %q: %w", kind, err)
	}
	return true, nil
}

// Put stores v in the slot for kind and rewrites the file.
func (f *File) Put(kind models.Kind, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache slot %q: %w", kind, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[kind] = raw
	return f.flush()
}

// flush writes the whole cache file. Caller holds f.mu.
func (f *File) flush() error {
	data, err := json.Marshal(f.slots)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
