// Package storage is the small file adapter the todo store and settings
// persist through.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the medium documents are persisted to. Read fails with an error
// wrapping fs.ErrNotExist when the path is absent.
type Storage interface {
	Exists(path string) bool
	Mkdir(path string) error
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// OSStorage stores documents on the local filesystem.
type OSStorage struct{}

func (OSStorage) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSStorage) Mkdir(path string) error {
	return os.MkdirAll(path, 0755)
}

func (OSStorage) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces path atomically: the data goes to a temp file in the same
// directory which is then renamed over the target.
func (OSStorage) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// MemStorage keeps documents in memory. Writes fail unless the parent
// directory was created with Mkdir, like a real filesystem.
type MemStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// WriteErr, when set, is returned by every Write.
	WriteErr error
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		files: make(map[string][]byte),
		dirs:  map[string]bool{".": true, "/": true},
	}
}

func (m *MemStorage) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	_, ok := m.files[path]
	return ok || m.dirs[path]
}

func (m *MemStorage) Mkdir(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := filepath.Clean(path); !m.dirs[p]; p = filepath.Dir(p) {
		if _, isFile := m.files[p]; isFile {
			return fmt.Errorf("mkdir %s: not a directory", p)
		}
		m.dirs[p] = true
	}
	return nil
}

func (m *MemStorage) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemStorage) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	path = filepath.Clean(path)
	if !m.dirs[filepath.Dir(path)] {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	return nil
}

// IsNotExist reports whether err means the document is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
