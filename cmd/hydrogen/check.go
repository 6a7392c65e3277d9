package main

import (
	"fmt"
	"strconv"

	"github.com/hydrogen-lang/hydrogen/internal/table"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check files...",
		Short: "Compile files and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Bool("stats", false, "Print statistics about the compiled program")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := s.CompileFiles(args...); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	noun := "files"
	if len(args) == 1 {
		noun = "file"
	}
	fmt.Fprintf(out, "%s %d %s compiled\n", green("ok"), len(args), noun)

	if stats, _ := cmd.Flags().GetBool("stats"); !stats {
		return nil
	}
	st := s.Program().Stats()
	rows := [][]string{
		{"instructions", strconv.Itoa(st.InstructionCount)},
		{"functions", strconv.Itoa(st.FunctionCount)},
		{"packages", strconv.Itoa(st.PackageCount)},
		{"structs", strconv.Itoa(st.StructCount)},
		{"natives", strconv.Itoa(st.NativeCount)},
		{"upvalues", strconv.Itoa(st.UpvalueCount)},
		{"numbers", strconv.Itoa(st.NumberCount)},
		{"strings", strconv.Itoa(st.StringCount)},
		{"fields", strconv.Itoa(st.FieldCount)},
		{"source bytes", strconv.Itoa(st.SourceBytes)},
	}
	return table.NewTable(out).
		WithHeader([]string{"TABLE", "ENTRIES"}).
		WithColumnAlignment([]table.Alignment{table.AlignLeft, table.AlignRight}).
		WithRows(rows).
		Render()
}
