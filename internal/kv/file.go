package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File implements Store with a single JSON document on disk, one per client
// installation. The whole document is rewritten on every mutation via a
// temp-file rename, so a crash mid-write leaves the previous state intact.
type File struct {
	mu   sync.RWMutex
	path string
	data map[string][]byte
}

var _ Store = (*File)(nil)

// OpenFile loads the store at path, creating parent directories as needed.
// A missing file means an empty store; a corrupted file is an error at open
// time (the one place corruption is surfaced rather than masked).
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("kv: state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kv: create state dir: %w", err)
	}
	f := &File{path: path, data: make(map[string][]byte)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: read state file: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("kv: decode state file: %w", err)
	}
	for k, v := range doc {
		f.data[k] = []byte(v)
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = cp
	if err := f.persistLocked(); err != nil {
		// Keep memory and disk in agreement: a failed write must not leave
		// state that would vanish on restart.
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.data[key]
	if !ok {
		return nil
	}
	delete(f.data, key)
	if err := f.persistLocked(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) persistLocked() error {
	doc := make(map[string]json.RawMessage, len(f.data))
	for k, v := range f.data {
		doc[k] = json.RawMessage(v)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("kv: encode state: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("kv: write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("kv: replace state: %w", err)
	}
	return nil
}
