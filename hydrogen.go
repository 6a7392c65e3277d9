// Package hydrogen compiles Hydrogen source files into a shared bytecode
// program.
//
// A Session owns one program. Every file compiled by the session is added to
// the program's main package, while imported files become packages of their
// own:
//
//	s, err := hydrogen.New(hydrogen.WithSearchPaths("lib"))
//	if err != nil {
//		return err
//	}
//	if _, err := s.CompileFile("main.hy"); err != nil {
//		return err
//	}
//	image, err := s.Image()
package hydrogen

import (
	"fmt"
	"os"
	"time"

	"github.com/hydrogen-lang/hydrogen/builtins"
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/compiler"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/rs/zerolog"
)

// Session compiles files into a single program.
type Session struct {
	prog     *bytecode.Program
	compiler *compiler.Compiler
	logger   zerolog.Logger
}

// New returns a Session with an empty program. The builtin native packages
// are registered unless WithoutBuiltins is given.
func New(opts ...Option) (*Session, error) {
	cfg := &config{
		logger: zerolog.Nop(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	loader := cfg.loader
	if loader == nil {
		fl, err := importer.NewFileLoader(cfg.searchPaths...)
		if err != nil {
			return nil, err
		}
		loader = fl
	}

	prog := bytecode.NewProgram()
	if !cfg.withoutBuiltins {
		if err := builtins.Register(prog, cfg.stdout); err != nil {
			return nil, err
		}
	}
	c, err := compiler.New(prog, compiler.WithLoader(loader))
	if err != nil {
		return nil, err
	}
	return &Session{
		prog:     prog,
		compiler: c,
		logger:   cfg.logger.With().Str("program", prog.ID.String()).Logger(),
	}, nil
}

// Program returns the program being compiled into.
func (s *Session) Program() *bytecode.Program {
	return s.prog
}

// CompileString compiles source code into the main package and returns the
// index of the function holding its top level code. name is used in error
// messages and to resolve relative imports.
func (s *Session) CompileString(name, source string) (uint16, error) {
	start := time.Now()
	before := len(s.prog.Functions)
	index, err := s.compiler.Compile(name, source)
	if err != nil {
		s.logger.Debug().Err(err).Str("file", name).Msg("compile failed")
		return 0, err
	}
	s.logger.Debug().
		Str("file", name).
		Uint16("function", index).
		Int("functions", len(s.prog.Functions)-before).
		Dur("elapsed", time.Since(start)).
		Msg("compiled")
	return index, nil
}

// CompileFile reads and compiles a file into the main package.
func (s *Session) CompileFile(path string) (uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return s.CompileString(path, string(data))
}

// CompileFiles compiles every file, continuing past failures. The errors
// of all failed files are combined into the returned error.
func (s *Session) CompileFiles(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if _, err := s.CompileFile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Combine(errs...)
}

// RegisterNative adds a native function to package pkg, creating the
// package if needed. An arity of -1 accepts any number of arguments.
func (s *Session) RegisterNative(pkg, name string, arity int, fn bytecode.NativeFunc) error {
	index := s.prog.FindPackage(pkg)
	if index < 0 {
		added, err := s.prog.AddPackage(&bytecode.Package{Name: pkg})
		if err != nil {
			return err
		}
		index = int(added)
	}
	if s.prog.Packages[index].TopLevel(name) >= 0 {
		return fmt.Errorf("native %s.%s is already defined", pkg, name)
	}
	_, err := s.prog.AddNative(&bytecode.Native{
		Name:    name,
		Package: uint16(index),
		Arity:   arity,
		Fn:      fn,
	})
	return err
}

// Image serializes the program.
func (s *Session) Image() ([]byte, error) {
	return bytecode.Marshal(s.prog)
}

// LoadImage deserializes a program and binds the builtin natives it
// references to callbacks writing to the configured stdout.
func LoadImage(data []byte, opts ...Option) (*bytecode.Program, error) {
	cfg := &config{stdout: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	prog, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if cfg.withoutBuiltins {
		return prog, nil
	}
	natives := builtins.Natives(cfg.stdout)
	for _, n := range prog.Natives {
		pkg := prog.Packages[n.Package].Name
		if fn, ok := natives[pkg][n.Name]; ok {
			if err := prog.Bind(pkg, n.Name, fn); err != nil {
				return nil, err
			}
		}
	}
	return prog, nil
}
