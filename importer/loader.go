package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ErrNotFound is returned by a Loader when no source exists for a path.
var ErrNotFound = errors.New("package not found")

// Source is the contents of a loaded file.
type Source struct {
	Path     string
	Contents string
}

// Loader reads the source of an imported package. from is the file
// containing the import statement, or empty when there is none.
type Loader interface {
	Load(from, path string) (Source, error)
}

// FileLoader reads packages from the filesystem. The path is first resolved
// against the importing file's directory, then against each search path.
type FileLoader struct {
	SearchPaths []string
}

// NewFileLoader returns a FileLoader. A leading `~` in a search path is
// expanded to the user's home directory.
func NewFileLoader(searchPaths ...string) (*FileLoader, error) {
	l := &FileLoader{}
	for _, p := range searchPaths {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return nil, fmt.Errorf("search path %s: %w", p, err)
		}
		l.SearchPaths = append(l.SearchPaths, expanded)
	}
	return l, nil
}

// Candidates lists the files tried, in order, for an import of path from
// the file from.
func (l *FileLoader) Candidates(from, path string) []string {
	candidates := []string{withExtension(Resolve(from, path))}
	if filepath.IsAbs(path) {
		return candidates
	}
	for _, dir := range l.SearchPaths {
		candidates = append(candidates, withExtension(filepath.Join(dir, path)))
	}
	return candidates
}

// Load implements Loader.
func (l *FileLoader) Load(from, path string) (Source, error) {
	for _, candidate := range l.Candidates(from, path) {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return Source{Path: candidate, Contents: string(data)}, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Source{}, fmt.Errorf("reading %s: %w", candidate, err)
		}
	}
	return Source{}, fmt.Errorf("%s: %w", path, ErrNotFound)
}

// MemoryLoader serves packages from a map of path to source code. Keys may
// be given with or without the file extension.
type MemoryLoader map[string]string

// Load implements Loader.
func (m MemoryLoader) Load(from, path string) (Source, error) {
	for _, key := range []string{Resolve(from, path), path} {
		for _, candidate := range []string{key, withExtension(key)} {
			if contents, ok := m[candidate]; ok {
				return Source{Path: withExtension(key), Contents: contents}, nil
			}
		}
	}
	return Source{}, fmt.Errorf("%s: %w", path, ErrNotFound)
}
