package hydrogen

import (
	"io"

	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/rs/zerolog"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	loader          importer.Loader
	searchPaths     []string
	logger          zerolog.Logger
	stdout          io.Writer
	withoutBuiltins bool
}

// WithLoader supplies the Loader used to read imported packages. It takes
// precedence over WithSearchPaths.
func WithLoader(loader importer.Loader) Option {
	return func(cfg *config) {
		cfg.loader = loader
	}
}

// WithSearchPaths adds directories in which imported packages are looked
// up after the importing file's own directory. This option is additive.
func WithSearchPaths(paths ...string) Option {
	return func(cfg *config) {
		cfg.searchPaths = append(cfg.searchPaths, paths...)
	}
}

// WithManifest configures the session from a hydrogen.toml manifest: its
// source directories become search paths.
func WithManifest(m *importer.Manifest) Option {
	return func(cfg *config) {
		cfg.searchPaths = append(cfg.searchPaths, m.SourceDirPaths()...)
	}
}

// WithLogger sets the logger receiving compilation events. Nothing is
// logged by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithStdout sets the writer used by the io package natives.
func WithStdout(w io.Writer) Option {
	return func(cfg *config) {
		cfg.stdout = w
	}
}

// WithoutBuiltins opts out of the builtin native packages.
func WithoutBuiltins() Option {
	return func(cfg *config) {
		cfg.withoutBuiltins = true
	}
}
