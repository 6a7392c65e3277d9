package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func fatal(err error) {
	fmt.Fprintln(os.Stderr, errorMessage(err))
	os.Exit(1)
}

// errorMessage renders compile errors with their source context and any
// other error as a single red line.
func errorMessage(err error) string {
	var cerr *errors.CompileError
	if stderrors.As(err, &cerr) || len(errors.Unwrap(err)) > 1 {
		return errors.FriendlyMessage(err, errors.NewFormatter(!color.NoColor))
	}
	return red(err.Error())
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

func getOutputJSON(v any) ([]byte, error) {
	if viper.GetBool("no-color") {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}
