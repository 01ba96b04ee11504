package core

import (
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-errors"
)

// DefaultStaticDataDir is the directory StaticJSONLoader reads from when no
// directory is configured.
const DefaultStaticDataDir = "static/data"

// StaticJSONLoader decodes a static JSON data file into T.
type StaticJSONLoader[T any] struct {
	fsys     fs.FS
	dir      string
	fileName string
}

// NewStaticJSONLoader validates fileName and returns a loader reading from
// dir inside fsys. An empty dir falls back to DefaultStaticDataDir.
func NewStaticJSONLoader[T any](fsys fs.FS, fileName string, dir ...string) (*StaticJSONLoader[T], error) {
	if !strings.HasSuffix(fileName, ".json") {
		return nil, ErrNotJSONFile.Clone().WithMetadata(map[string]any{"file": fileName})
	}

	d := DefaultStaticDataDir
	if len(dir) > 0 && strings.TrimSpace(dir[0]) != "" {
		d = strings.Trim(dir[0], "/")
	}

	return &StaticJSONLoader[T]{
		fsys:     fsys,
		dir:      d,
		fileName: fileName,
	}, nil
}

// Load reads and decodes the file.
func (l *StaticJSONLoader[T]) Load() (*T, error) {
	name := path.Join(l.dir, l.fileName)

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryNotFound, ErrStaticFileNotFound.Message).
			WithTextCode(TextCodeStaticFileNotFound).
			WithMetadata(map[string]any{"file": name})
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, ErrStaticFileNotFound.Message).
			WithTextCode(TextCodeStaticFileNotFound).
			WithMetadata(map[string]any{"file": name})
	}

	return out, nil
}
