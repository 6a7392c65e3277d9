package main

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hydrogen-lang/hydrogen"
	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Returns the project manifest, or nil when there is none.
func getManifest() (*importer.Manifest, error) {
	return importer.FindManifest(viper.GetString("project"))
}

func getSessionOptions(cmd *cobra.Command) ([]hydrogen.Option, error) {
	opts := []hydrogen.Option{
		hydrogen.WithStdout(cmd.OutOrStdout()),
	}
	if viper.GetBool("no-builtins") {
		opts = append(opts, hydrogen.WithoutBuiltins())
	}
	if paths := viper.GetStringSlice("path"); len(paths) > 0 {
		opts = append(opts, hydrogen.WithSearchPaths(paths...))
	}
	m, err := getManifest()
	if err != nil {
		return nil, err
	}
	if m != nil {
		opts = append(opts, hydrogen.WithManifest(m))
	}
	if viper.GetBool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{
			Out:     cmd.ErrOrStderr(),
			NoColor: color.NoColor,
		}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
		opts = append(opts, hydrogen.WithLogger(logger))
	}
	return opts, nil
}

func newSession(cmd *cobra.Command) (*hydrogen.Session, error) {
	opts, err := getSessionOptions(cmd)
	if err != nil {
		return nil, err
	}
	return hydrogen.New(opts...)
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to compile")
	cmd.Flags().Bool("stdin", false, "Read code from stdin")
}

type input struct {
	name string
	code string
}

func getInput(cmd *cobra.Command, args []string) (input, error) {
	// Determine what code is to be compiled. There three possibilities:
	// 1. --code <code>
	// 2. --stdin (read code from stdin)
	// 3. path as args[0]
	codeFlagSet := cmd.Flags().Changed("code")
	stdinFlagSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0
	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return input{}, errors.New("multiple input sources specified")
	}
	switch {
	case stdinFlagSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return input{}, err
		}
		return input{name: "<stdin>", code: string(data)}, nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return input{}, err
		}
		return input{name: args[0], code: string(data)}, nil
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return input{name: "<code>", code: code}, nil
	}
	m, err := getManifest()
	if err != nil {
		return input{}, err
	}
	if m == nil {
		return input{}, errors.New("no input provided")
	}
	path := m.EntryPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return input{}, err
	}
	return input{name: path, code: string(data)}, nil
}
