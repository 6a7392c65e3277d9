package main

import (
	"fmt"
	"strings"

	"github.com/hydrogen-lang/hydrogen/builtins"
	"github.com/hydrogen-lang/hydrogen/internal/table"
	"github.com/spf13/cobra"
)

func newNativesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "natives [package]",
		Short: "List the builtin native functions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNatives,
	}
	cmd.Flags().Bool("json", false, "Print documentation as JSON")
	return cmd
}

func runNatives(cmd *cobra.Command, args []string) error {
	var specs []builtins.FuncSpec
	for _, spec := range builtins.Docs() {
		if len(args) == 0 || spec.Package == args[0] {
			specs = append(specs, spec)
		}
	}
	if len(specs) == 0 {
		return fmt.Errorf("unknown package: %s", args[0])
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := getOutputJSON(specs)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	var rows [][]string
	for _, spec := range specs {
		rows = append(rows, []string{
			bold(spec.Package + "." + spec.Name),
			"(" + strings.Join(spec.Args, ", ") + ")",
			spec.Returns,
			spec.Doc,
		})
	}
	return table.NewTable(out).
		WithHeader([]string{"FUNCTION", "ARGS", "RETURNS", "DESCRIPTION"}).
		WithRows(rows).
		Render()
}
