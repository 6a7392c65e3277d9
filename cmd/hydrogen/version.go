package main

import (
	"fmt"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err := getOutputJSON(map[string]any{
					"version":      version,
					"commit":       commit,
					"date":         date,
					"image_format": bytecode.FormatVersion,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintf(out, "hydrogen %s (commit %s, built %s, image format %d)\n",
				version, commit, date, bytecode.FormatVersion)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print version information as JSON")
	return cmd
}
