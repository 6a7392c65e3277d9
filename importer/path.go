// Package importer validates and resolves import paths and loads the source
// of imported packages.
package importer

import (
	"path/filepath"
	"strings"
)

// Extension is appended to import paths that name a file without one.
const Extension = ".hy"

func validPathChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') || ch == '_' || ch == '/' || ch == '.'
}

// Valid returns true if path may appear in an import statement. Paths hold
// letters, digits, `_`, `/` and `.`, may only use dots in whole `..`
// components, and have no empty components.
func Valid(path string) bool {
	if path == "" {
		return false
	}
	for i := 0; i < len(path); i++ {
		if !validPathChar(path[i]) {
			return false
		}
	}
	if last := path[len(path)-1]; last == '/' || last == '.' {
		return false
	}
	for _, component := range strings.Split(path, "/") {
		if component == "" {
			// A leading slash makes the path absolute.
			continue
		}
		if component == ".." {
			continue
		}
		if strings.Contains(component, ".") {
			return false
		}
	}
	return !strings.Contains(path, "//")
}

// Name derives a package name from a path: the final component with any
// file extension removed.
func Name(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// Resolve returns the path of the file named by an import statement in the
// file parent. Absolute paths and imports from files without a directory are
// returned unchanged; otherwise the path is relative to the parent's
// directory.
func Resolve(parent, path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	i := strings.LastIndexByte(parent, '/')
	if i < 0 {
		return path
	}
	return filepath.ToSlash(filepath.Join(parent[:i], path))
}

// withExtension appends Extension to a path lacking one.
func withExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + Extension
	}
	return path
}
