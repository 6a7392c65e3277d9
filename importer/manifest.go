package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

// ManifestFile is the name of the project manifest.
const ManifestFile = "hydrogen.toml"

// Manifest represents a hydrogen.toml project configuration.
type Manifest struct {
	Project ProjectConfig `toml:"project"`
	Source  SourceConfig  `toml:"source"`
	Build   BuildConfig   `toml:"build"`

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// SourceConfig configures source file locations.
type SourceConfig struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// BuildConfig configures compiled image output.
type BuildConfig struct {
	Output string `toml:"output"`
	Cache  string `toml:"cache"`
}

// LoadManifest parses the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"."}
	}
	if m.Source.Entry == "" {
		m.Source.Entry = "main" + Extension
	}
	return &m, nil
}

// FindManifest walks up from startDir looking for a manifest. It returns
// nil if none is found.
func FindManifest(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return LoadManifest(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source
// directories, used as import search paths.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// EntryPath returns the absolute path of the entry file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir, m.Source.Entry)
}

// OutputPath returns the image output path, defaulting to the project name.
func (m *Manifest) OutputPath() string {
	out := m.Build.Output
	if out == "" {
		name := m.Project.Name
		if name == "" {
			name = filepath.Base(m.Dir)
		}
		out = name + ".hyc"
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(m.Dir, out)
}

// CachePath returns the location of the image cache, or an empty string
// when the manifest does not configure one. A leading `~` is expanded.
func (m *Manifest) CachePath() (string, error) {
	if m.Build.Cache == "" {
		return "", nil
	}
	path, err := homedir.Expand(m.Build.Cache)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(m.Dir, path), nil
}
