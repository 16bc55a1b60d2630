package todo

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cwarden/wkcal/internal/storage"
)

// Backend persists a whole ScopeMap. Load returns an empty map when nothing
// has been stored yet, *MalformedError when stored content can't be decoded
// and *IOError for any other failure. Save replaces everything.
type Backend interface {
	Load(ctx context.Context) (ScopeMap, error)
	Save(ctx context.Context, m ScopeMap) error
	Location() string
}

// BackupSuffix is appended to the data file name for the copy of the
// previous document kept on every save.
const BackupSuffix = ".bak"

// UnreadableSuffix names where a previous document that could not be decoded
// is kept. Existing copies are never overwritten: later ones get ".1", ".2"...
const UnreadableSuffix = ".unreadable"

// FileBackend stores the map as one JSON document.
type FileBackend struct {
	path    string
	storage storage.Storage
}

func NewFileBackend(st storage.Storage, path string) *FileBackend {
	if st == nil {
		st = storage.OSStorage{}
	}
	return &FileBackend{path: path, storage: st}
}

func (b *FileBackend) Location() string {
	return b.path
}

func (b *FileBackend) Load(ctx context.Context) (ScopeMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := b.storage.Read(b.path)
	if storage.IsNotExist(err) {
		return make(ScopeMap), nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: b.path, Err: err}
	}

	m, err := Decode(data)
	if err != nil {
		return nil, &MalformedError{Path: b.path, Err: err}
	}
	return m, nil
}

func (b *FileBackend) Save(ctx context.Context, m ScopeMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(m)
	if err != nil {
		return &IOError{Op: "encode", Path: b.path, Err: err}
	}

	// Ensure directory exists
	dir := filepath.Dir(b.path)
	if !b.storage.Exists(dir) {
		if err := b.storage.Mkdir(dir); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	// A decodable previous document rotates into .bak. An undecodable one
	// was loaded as empty, so it gets a copy no later save replaces.
	if prev, err := b.storage.Read(b.path); err == nil {
		backup := b.path + BackupSuffix
		if _, err := Decode(prev); err != nil {
			backup = b.unreadablePath()
		}
		if err := b.storage.Write(backup, prev); err != nil {
			return &IOError{Op: "backup", Path: backup, Err: err}
		}
	}

	if err := b.storage.Write(b.path, data); err != nil {
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	return nil
}

func (b *FileBackend) unreadablePath() string {
	path := b.path + UnreadableSuffix
	for i := 1; b.storage.Exists(path); i++ {
		path = fmt.Sprintf("%s%s.%d", b.path, UnreadableSuffix, i)
	}
	return path
}
