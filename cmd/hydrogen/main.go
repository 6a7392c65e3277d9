package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hydrogen",
		Short:         "Compile Hydrogen source code to bytecode",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			processGlobalFlags()
		},
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.Bool("no-color", false, "Disable colored output")
	pf.StringSlice("path", nil, "Directories searched for imported packages")
	pf.String("project", ".", "Directory in which to look for a hydrogen.toml manifest")
	pf.Bool("no-builtins", false, "Disable the builtin native packages")
	pf.BoolP("verbose", "v", false, "Log compilation events to stderr")

	viper.SetEnvPrefix("hydrogen")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"no-color", "path", "project", "no-builtins", "verbose"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
	viper.BindEnv("no-color", "HYDROGEN_NO_COLOR", "NO_COLOR")

	root.AddCommand(
		newDisCmd(),
		newCheckCmd(),
		newBuildCmd(),
		newReplCmd(),
		newNativesCmd(),
		newVersionCmd(),
	)
	return root
}
