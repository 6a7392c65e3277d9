package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// CompileError represents a lexical, syntax or semantic error with the
// location of the token that triggered it.
type CompileError struct {
	Kind        Kind
	Code        ErrorCode
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
}

// New creates a compile error for the given code. The kind is derived from
// the code's category.
func New(code ErrorCode, loc SourceLocation, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:       code.Kind(),
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Filename:   loc.Filename,
		Line:       loc.Line,
		Column:     loc.Column,
		SourceLine: loc.Source,
	}
}

// WithSuggestions attaches "did you mean" candidates to the error.
func (e *CompileError) WithSuggestions(s []Suggestion) *CompileError {
	e.Suggestions = s
	return e
}

// WithNote attaches a note to the error.
func (e *CompileError) WithNote(note string) *CompileError {
	e.Note = note
	return e
}

// WithSpan sets the last column covered by the offending token.
func (e *CompileError) WithSpan(length int) *CompileError {
	if length > 1 {
		e.EndColumn = e.Column + length - 1
	}
	return e
}

// Location returns where the error occurred.
func (e *CompileError) Location() SourceLocation {
	return SourceLocation{
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Source:   e.SourceLine,
	}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Filename != "" || e.Line > 0 {
		b.WriteString("\n\nlocation: ")
		if e.Filename != "" {
			b.WriteString(e.Filename)
			b.WriteString(":")
		}
		fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	}
	return b.String()
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:      e.Code,
		Kind:      e.Kind.String(),
		Message:   e.Message,
		Filename:  e.Filename,
		Line:      e.Line,
		Column:    e.Column,
		EndColumn: e.EndColumn,
		Note:      e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}

// Combine aggregates the errors of several independently compiled files into
// one error. Nil entries are skipped and nil is returned when every entry is
// nil.
func Combine(errs ...error) error {
	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result.ErrorOrNil()
}

// Unwrap returns the individual errors held by an error built with Combine.
// Any other error is returned as a single element slice.
func Unwrap(err error) []error {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		return merr.WrappedErrors()
	}
	return []error{err}
}

// FriendlyMessage renders every compile error held by err with the given
// formatter. Errors that are not compile errors are rendered with Error().
func FriendlyMessage(err error, f *Formatter) string {
	var formatted []*FormattedError
	for _, e := range Unwrap(err) {
		var fe FormattableError
		if stderrors.As(e, &fe) {
			formatted = append(formatted, fe.ToFormatted())
		} else {
			formatted = append(formatted, &FormattedError{Message: e.Error()})
		}
	}
	return f.FormatMultiple(formatted)
}

func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}
