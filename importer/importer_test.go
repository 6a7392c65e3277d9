package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{"math", true},
		{"lib/math", true},
		{"../lib/math_2", true},
		{"a/../../b", true},
		{"/usr/lib/hydrogen/io", true},
		{"", false},
		{"lib/", false},
		{"lib.", false},
		{"lib//math", false},
		{"math.hy", false},
		{"./math", false},
		{"a/./b", false},
		{".../x", false},
		{"lib/..x", false},
		{"my-lib", false},
		{"lib math", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.valid, Valid(tt.path))
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"math", "math"},
		{"lib/math", "math"},
		{"../lib/strings", "strings"},
		{"main.hy", "main"},
		{"dir.d/file", "file"},
		{"/abs/path/io.hy", "io"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, Name(tt.path), tt.path)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		parent   string
		path     string
		expected string
	}{
		{"", "math", "math"},
		{"main.hy", "math", "math"},
		{"src/main.hy", "math", "src/math"},
		{"src/app/main.hy", "../lib/math", "src/lib/math"},
		{"src/main.hy", "/opt/math", "/opt/math"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, Resolve(tt.parent, tt.path), "%s from %s", tt.path, tt.parent)
	}
}

func TestMemoryLoader(t *testing.T) {
	loader := MemoryLoader{
		"math.hy":     "let pi = 3.14",
		"lib/strings": "let empty = ''",
	}
	src, err := loader.Load("", "math")
	require.Nil(t, err)
	require.Equal(t, "math.hy", src.Path)
	require.Equal(t, "let pi = 3.14", src.Contents)

	src, err = loader.Load("lib/main.hy", "strings")
	require.Nil(t, err)
	require.Equal(t, "lib/strings.hy", src.Path)

	_, err = loader.Load("", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileLoader(t *testing.T) {
	root := t.TempDir()
	require.Nil(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.Nil(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(root, "src", "util.hy"), []byte("let a = 1"), 0o644))
	require.Nil(t, os.WriteFile(filepath.Join(root, "vendor", "json.hy"), []byte("let b = 2"), 0o644))

	loader, err := NewFileLoader(filepath.Join(root, "vendor"))
	require.Nil(t, err)

	main := filepath.ToSlash(filepath.Join(root, "src", "main.hy"))
	src, err := loader.Load(main, "util")
	require.Nil(t, err)
	require.Equal(t, "let a = 1", src.Contents)

	src, err = loader.Load(main, "json")
	require.Nil(t, err)
	require.Equal(t, "let b = 2", src.Contents)
	require.Equal(t, filepath.Join(root, "vendor", "json.hy"), src.Path)

	_, err = loader.Load(main, "nothing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileLoaderExpandsHome(t *testing.T) {
	loader, err := NewFileLoader("~/hydrogen")
	require.Nil(t, err)
	require.Len(t, loader.SearchPaths, 1)
	require.NotContains(t, loader.SearchPaths[0], "~")
}

func TestManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	require.Nil(t, os.MkdirAll(nested, 0o755))
	manifest := `
[project]
name = "demo"
version = "0.1.0"

[source]
dirs = ["src", "lib"]

[build]
cache = ".hydrogen/cache.db"
`
	require.Nil(t, os.WriteFile(filepath.Join(root, ManifestFile), []byte(manifest), 0o644))

	m, err := FindManifest(nested)
	require.Nil(t, err)
	require.NotNil(t, m)
	require.Equal(t, "demo", m.Project.Name)
	require.Equal(t, "0.1.0", m.Project.Version)
	require.Equal(t, []string{filepath.Join(m.Dir, "src"), filepath.Join(m.Dir, "lib")}, m.SourceDirPaths())
	require.Equal(t, filepath.Join(m.Dir, "main.hy"), m.EntryPath())
	require.Equal(t, filepath.Join(m.Dir, "demo.hyc"), m.OutputPath())
	require.Equal(t, ".hydrogen/cache.db", m.Build.Cache)
	cachePath, err := m.CachePath()
	require.Nil(t, err)
	require.Equal(t, filepath.Join(m.Dir, ".hydrogen", "cache.db"), cachePath)

	m.Build.Cache = ""
	cachePath, err = m.CachePath()
	require.Nil(t, err)
	require.Empty(t, cachePath)
}

func TestManifestErrors(t *testing.T) {
	root := t.TempDir()
	m, err := FindManifest(root)
	require.Nil(t, err)
	require.Nil(t, m)

	require.Nil(t, os.WriteFile(filepath.Join(root, ManifestFile), []byte("[project\n"), 0o644))
	_, err = LoadManifest(root)
	require.ErrorContains(t, err, "parse error")
}
