package main

import (
	"fmt"

	"github.com/hydrogen-lang/hydrogen/dis"
	"github.com/spf13/cobra"
)

type listing struct {
	Function     string            `json:"function"`
	Index        uint16            `json:"index"`
	Instructions []dis.Instruction `json:"instructions"`
}

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble Hydrogen bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDis,
	}
	addInputFlags(cmd)
	cmd.Flags().String("func", "", "Function to disassemble")
	cmd.Flags().Bool("all", false, "Disassemble every function of the program")
	cmd.Flags().Bool("json", false, "Print instructions as JSON")
	return cmd
}

func runDis(cmd *cobra.Command, args []string) error {
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	index, err := s.CompileString(in.name, in.code)
	if err != nil {
		return err
	}
	prog := s.Program()

	targets := []uint16{index}
	all, _ := cmd.Flags().GetBool("all")
	// If a function name was provided, disassemble its code only
	if funcName, _ := cmd.Flags().GetString("func"); funcName != "" {
		fn, ok := dis.FindFunction(prog, funcName)
		if !ok {
			return fmt.Errorf("function %q not found", funcName)
		}
		targets = []uint16{fn}
	} else if all {
		targets = targets[:0]
		for i := range prog.Functions {
			targets = append(targets, uint16(i))
		}
	}

	var listings []listing
	for _, fn := range targets {
		instructions, err := dis.Disassemble(prog, fn)
		if err != nil {
			return err
		}
		listings = append(listings, listing{
			Function:     prog.Functions[fn].String(),
			Index:        fn,
			Instructions: instructions,
		})
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := getOutputJSON(listings)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	for i, l := range listings {
		if len(listings) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s\n", bold(fmt.Sprintf("%d: %s", l.Index, l.Function)))
		}
		if err := dis.Print(l.Instructions, out); err != nil {
			return err
		}
	}
	return nil
}
