package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxSuggestions is the most names a "did you mean" hint lists.
const MaxSuggestions = 3

// Suggestion is a declared name close to one that failed to resolve.
// Distance 0 means the two differ only in case.
type Suggestion struct {
	Value    string
	Distance int
}

// SuggestSimilar returns the candidates within a few edits of target, closest
// first. Candidates are expected in lookup order, innermost scope first, and
// equally close names keep that order, so the declaration nearest to the
// failed reference is listed first.
//
// Case differences are free and swapping two adjacent characters is a single
// edit. Names of up to 3 characters allow one edit, up to 5 allow two, longer
// names three.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if target == "" {
		return nil
	}
	budget := editBudget(len([]rune(target)))
	var suggestions []Suggestion
	for i, candidate := range candidates {
		if candidate == "" || candidate == target || slices.Contains(candidates[:i], candidate) {
			continue
		}
		if d := nameDistance(target, candidate); d <= budget {
			suggestions = append(suggestions, Suggestion{Value: candidate, Distance: d})
		}
	}
	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		return a.Distance - b.Distance
	})
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

func editBudget(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	}
	return 3
}

// FormatSuggestions renders suggestions as a hint, or "" if there are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean `" + suggestions[0].Value + "`?"
	}
	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = "`" + s.Value + "`"
	}
	return "did you mean one of " + strings.Join(names, ", ") + "?"
}

// nameDistance is the optimal string alignment distance between two names,
// ignoring case.
func nameDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	same := func(i, j int) bool {
		return unicode.ToLower(ar[i]) == unicode.ToLower(br[j])
	}
	// d[i][j] is the distance between ar[:i] and br[:j].
	d := make([][]int, len(ar)+1)
	for i := range d {
		d[i] = make([]int, len(br)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ar); i++ {
		for j := 1; j <= len(br); j++ {
			cost := 1
			if same(i-1, j-1) {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && same(i-1, j-2) && same(i-2, j-1) {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(ar)][len(br)]
}
