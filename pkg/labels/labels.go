// Package labels maps free-text model output onto a configured set of
// classification labels. Matching is case-insensitive, punctuation-blind,
// and word-bounded, with a configurable scan direction for resolving
// competing matches.
package labels

import (
	"strings"
	"unicode"
)

// Options controls match selection.
//
// FromStart selects the match whose starting word index is smallest;
// otherwise the match whose ending word index is largest wins. Ties on
// position prefer the longest label; ties on position and length prefer
// the label declared earliest in the class list.
type Options struct {
	FromStart bool
}

// Result is the outcome of parsing model output against a class list.
// Classification is empty when no label matched. Explanation is always
// the trimmed original text, regardless of match outcome.
type Result struct {
	Classification string
	Explanation    string
}

// Match locates a label occurrence within a normalized word sequence.
// Start and End are word indices; End is exclusive.
type Match struct {
	Label string
	Start int
	End   int
}

// Normalize lower-cases the input, strips every character that is not
// alphanumeric or whitespace, and collapses the remainder to a single-space
// word sequence. It is idempotent.
func Normalize(s string) string {
	return strings.Join(Words(s), " ")
}

// Words returns the normalized word sequence for the input.
func Words(s string) []string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// NormalizeLabel normalizes a configured label: in addition to text
// normalization, internal underscores and hyphens become spaces so
// "multi_word_class" and "multi word class" match identically.
func NormalizeLabel(label string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(label)
	return Normalize(replaced)
}

// Parse scans the text for the best occurrence of any configured class.
func Parse(text string, classes []string, opts Options) Result {
	result := Result{Explanation: strings.TrimSpace(text)}

	if m, ok := BestMatch(Words(text), classes, opts); ok {
		result.Classification = m.Label
	}

	return result
}

// BestMatch finds every word-bounded occurrence of each class within the
// word sequence and selects the winner per Options. The returned Label is
// the class as declared, not its normalized form.
func BestMatch(words []string, classes []string, opts Options) (Match, bool) {
	var best Match
	found := false

	for _, class := range classes {
		labelWords := strings.Fields(NormalizeLabel(class))
		if len(labelWords) == 0 {
			continue
		}

		for start := 0; start+len(labelWords) <= len(words); start++ {
			if !matchesAt(words, labelWords, start) {
				continue
			}

			candidate := Match{
				Label: class,
				Start: start,
				End:   start + len(labelWords),
			}

			if !found || better(candidate, best, opts) {
				best = candidate
				found = true
			}
		}
	}

	return best, found
}

func matchesAt(words, labelWords []string, start int) bool {
	for i, lw := range labelWords {
		if words[start+i] != lw {
			return false
		}
	}
	return true
}

// better reports whether candidate strictly beats current. Requiring strict
// improvement preserves declaration order on full ties, since classes are
// scanned in declared order.
func better(candidate, current Match, opts Options) bool {
	if opts.FromStart {
		if candidate.Start != current.Start {
			return candidate.Start < current.Start
		}
	} else {
		if candidate.End != current.End {
			return candidate.End > current.End
		}
	}
	return candidate.End-candidate.Start > current.End-current.Start
}
