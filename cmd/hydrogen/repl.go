package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hydrogen-lang/hydrogen"
	"github.com/hydrogen-lang/hydrogen/dis"
	"github.com/hydrogen-lang/hydrogen/internal/lexer"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".hydrogen_history"
	promptMain  = "hydrogen> "
	promptCont  = "......... "
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Compile entries interactively and show their bytecode",
		Args:  cobra.NoArgs,
		RunE:  runRepl,
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	if !isTerminalIO() {
		return errors.New("the repl requires a terminal")
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var histPath string
	if home, err := homedir.Dir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	out := cmd.OutOrStdout()
	for {
		code, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit":
			return nil
		}
		if err := compileEntry(s, code, out); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), errorMessage(err))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readEntry reads lines until every bracket opened by the entry is closed.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete returns true if code opens more brackets than it closes.
// Code that does not lex is complete so that its error is reported.
func incomplete(code string) bool {
	lex := lexer.New(code)
	depth := 0
	for {
		tok, err := lex.Next()
		if err != nil {
			return false
		}
		switch tok.Type {
		case token.LBRACE, token.LPAREN:
			depth++
		case token.RBRACE, token.RPAREN:
			depth--
		case token.EOF:
			return depth > 0
		}
	}
}

// compileEntry compiles one entry into the session and prints its bytecode.
func compileEntry(s *hydrogen.Session, code string, w io.Writer) error {
	index, err := s.CompileString("<repl>", code)
	if err != nil {
		return err
	}
	instructions, err := dis.Disassemble(s.Program(), index)
	if err != nil {
		return err
	}
	return dis.Print(instructions, w)
}
