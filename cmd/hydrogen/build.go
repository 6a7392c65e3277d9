package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/hydrogen-lang/hydrogen"
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/cache"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Compile a program into a bytecode image",
		Long: "Compile a program into a bytecode image. Without a file, the entry " +
			"file of the project manifest is built.",
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Path of the image to write")
	cmd.Flags().String("cache", "", "SQLite database caching compiled images")
	return cmd
}

func getOutputPath(cmd *cobra.Command, in input) (string, error) {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return out, nil
	}
	m, err := getManifest()
	if err != nil {
		return "", err
	}
	if m != nil && in.name == m.EntryPath() {
		return m.OutputPath(), nil
	}
	return "", errors.New("no output path given (use -o)")
}

func getCachePath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("cache"); path != "" {
		return homedir.Expand(path)
	}
	m, err := getManifest()
	if err != nil || m == nil {
		return "", err
	}
	return m.CachePath()
}

// upToDate reports whether every source file the program was compiled from
// still has the same contents on disk.
func upToDate(prog *bytecode.Program) bool {
	for _, src := range prog.Sources {
		data, err := os.ReadFile(src.File)
		if errors.Is(err, os.ErrNotExist) {
			// Inline code has no file.
			continue
		}
		if err != nil || string(data) != src.Contents {
			return false
		}
	}
	return true
}

func runBuild(cmd *cobra.Command, args []string) error {
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	outPath, err := getOutputPath(cmd, in)
	if err != nil {
		return err
	}
	cachePath, err := getCachePath(cmd)
	if err != nil {
		return err
	}

	var store *cache.Store
	key := cache.Key(in.name, in.code, strconv.FormatBool(viper.GetBool("no-builtins")))
	if cachePath != "" {
		store, err = cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	opts, err := getSessionOptions(cmd)
	if err != nil {
		return err
	}
	image, hit, err := compileImage(store, key, in, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, image, 0o644); err != nil {
		return err
	}
	status := "built"
	if hit {
		status = "cached"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", green(status), outPath, humanize.Bytes(uint64(len(image))))
	return nil
}

// compileImage returns the image stored in the cache under key when its
// sources are unchanged, and otherwise compiles it and stores the result.
func compileImage(store *cache.Store, key string, in input, opts []hydrogen.Option) ([]byte, bool, error) {
	if store != nil {
		data, err := store.Get(key)
		switch {
		case err == nil:
			prog, err := hydrogen.LoadImage(data, opts...)
			if err == nil && upToDate(prog) {
				return data, true, nil
			}
		case !errors.Is(err, cache.ErrNotFound):
			return nil, false, err
		}
	}

	s, err := hydrogen.New(opts...)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.CompileString(in.name, in.code); err != nil {
		return nil, false, err
	}
	image, err := s.Image()
	if err != nil {
		return nil, false, err
	}
	if store != nil {
		if err := store.Put(key, image); err != nil {
			return nil, false, err
		}
	}
	return image, false, nil
}
