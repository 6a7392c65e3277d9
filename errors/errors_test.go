package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "main.hy", Line: 10, Column: 5}, "main.hy:10:5"},
		{"without filename", SourceLocation{Line: 10, Column: 5}, "10:5"},
		{"zero location", SourceLocation{}, "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.loc.String())
		})
	}
	require.True(t, SourceLocation{}.IsZero())
	require.False(t, SourceLocation{Column: 1}.IsZero())
}

func TestKindFromCode(t *testing.T) {
	require.Equal(t, Lexical, E1002.Kind())
	require.Equal(t, Syntactic, E2001.Kind())
	require.Equal(t, Semantic, E3004.Kind())
	require.Equal(t, "break outside loop", E3004.Description())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
}

func TestCompileErrorMessage(t *testing.T) {
	err := New(E3001, SourceLocation{Filename: "main.hy", Line: 3, Column: 7}, "Undefined variable `%s`", "foo")
	require.Equal(t, Semantic, err.Kind)
	require.Equal(t, "semantic error: Undefined variable `foo`\n\nlocation: main.hy:3:7 (line 3, column 7)", err.Error())

	bare := New(E2001, SourceLocation{}, "Expected `}`")
	require.Equal(t, "syntax error: Expected `}`", bare.Error())
}

func TestFriendlyErrorMessage(t *testing.T) {
	err := New(E3001, SourceLocation{Filename: "main.hy", Line: 2, Column: 5, Source: "let fooo = 1"}, "Undefined variable `foo`").
		WithSpan(3).
		WithSuggestions([]Suggestion{{Value: "fooo", Distance: 1}})
	expected := strings.Join([]string{
		"semantic error[E3001]: Undefined variable `foo`",
		"  --> main.hy:2:5",
		"   |",
		" 2 | let fooo = 1",
		"   |     ^^^",
		"   |",
		"   = hint: did you mean `fooo`?",
		"",
	}, "\n")
	require.Equal(t, expected, err.FriendlyErrorMessage())
}

func TestCaretFollowsTabs(t *testing.T) {
	err := New(E3004, SourceLocation{Line: 1, Column: 2, Source: "\tbreak"}, "`break` not inside loop")
	out := err.FriendlyErrorMessage()
	require.Contains(t, out, "   | \t^\n")
}

func TestColorFormatting(t *testing.T) {
	err := New(E1002, SourceLocation{Line: 1, Column: 1, Source: "'abc"}, "Unterminated string literal")
	colored := NewFormatter(true).Format(err.ToFormatted())
	require.Contains(t, colored, "\x1b[")
	plain := NewFormatter(false).Format(err.ToFormatted())
	require.NotContains(t, plain, "\x1b[")
}

func TestCombine(t *testing.T) {
	require.Nil(t, Combine(nil, nil))

	a := New(E3004, SourceLocation{Filename: "a.hy", Line: 1, Column: 1}, "`break` not inside loop")
	single := Combine(nil, a)
	require.Len(t, Unwrap(single), 1)
	require.Equal(t, a.Error(), single.Error())

	b := New(E3001, SourceLocation{Filename: "b.hy", Line: 4, Column: 2}, "Undefined variable `x`")
	both := Combine(a, fmt.Errorf("reading c.hy: %w", b), nil)
	errs := Unwrap(both)
	require.Len(t, errs, 2)
	require.True(t, strings.HasSuffix(both.Error(), "(and 1 more errors)"))

	out := FriendlyMessage(both, NewFormatter(false))
	require.Contains(t, out, "semantic error[E3004]")
	require.Contains(t, out, "semantic error[E3001]")
	require.Contains(t, out, "found 2 errors")
}

func TestSuggestSimilar(t *testing.T) {
	tests := []struct {
		target     string
		candidates []string
		expected   []string
	}{
		{"coutn", []string{"count", "counter", "x"}, []string{"count"}},
		{"ab", []string{"abc", "xyz"}, []string{"abc"}},
		{"value", []string{"value"}, nil},
		{"", []string{"a"}, nil},
		{"printn", []string{"println", "print", "println"}, []string{"println", "print"}},
		{"point", []string{"pint", "Point"}, []string{"Point", "pint"}},
		{"cnt", []string{"cut", "cat", "count"}, []string{"cut", "cat"}},
		{"a", []string{"b", "c", "d", "e"}, []string{"b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got []string
			for _, s := range SuggestSimilar(tt.target, tt.candidates) {
				got = append(got, s.Value)
			}
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatSuggestions(t *testing.T) {
	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "did you mean `a`?", FormatSuggestions([]Suggestion{{Value: "a"}}))
	require.Equal(t, "did you mean one of `a`, `b`?", FormatSuggestions([]Suggestion{{Value: "a"}, {Value: "b"}}))
}

func TestNameDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"Count", "count", 0},
		{"cuont", "count", 1},
		{"ab", "ba", 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, nameDistance(tt.a, tt.b), "%s -> %s", tt.a, tt.b)
	}
}
