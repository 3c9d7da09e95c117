// Package filestore keeps whole collections of entities as pretty-printed
// JSON arrays on disk and rewrites the full file on every mutation.
package filestore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Read decodes the JSON array stored at path. A missing file is an empty
// collection, not an error.
func Read[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, storageErr("read", path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, storageErr("decode", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Load is Read that never fails: an unreadable or malformed file yields an
// empty collection.
func Load[T any](path string) []T {
	items, err := Read[T](path)
	if err != nil {
		return []T{}
	}
	return items
}

// Save replaces the file at path with items encoded as a JSON array
// indented by two spaces. Parent directories are created as needed. The new
// content is written to a temp file in the same directory and renamed over
// path, so readers see either the old file or the new one.
func Save[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return storageErr("encode", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return storageErr("mkdir", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return storageErr("write", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return storageErr("replace", path, err)
	}
	return nil
}

func writeSynced(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
