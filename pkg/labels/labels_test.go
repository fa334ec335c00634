package labels_test

import (
	"testing"

	"github.com/JaimeStill/tally/pkg/labels"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"lowercases", "YES", "yes"},
		{"strips punctuation", "Yes, absolutely!", "yes absolutely"},
		{"collapses whitespace", "yes   \t no", "yes no"},
		{"keeps digits", "Level 2 issue", "level 2 issue"},
		{"mixed punctuation", "Approved - meets all requirements.", "approved meets all requirements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := labels.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Yes, but actually no",
		"  MULTI_word   Class!!  ",
		"",
		"already normalized text",
	}

	for _, input := range inputs {
		once := labels.Normalize(input)
		twice := labels.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"underscores to spaces", "multi_word_class", "multi word class"},
		{"hyphens to spaces", "multi-word-class", "multi word class"},
		{"mixed separators", "Multi_Word-Class", "multi word class"},
		{"plain label", "Yes", "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := labels.NormalizeLabel(tt.input); got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		classes []string
		opts    labels.Options
		want    string
	}{
		{
			"single token equal to label",
			"Yes",
			[]string{"Yes", "No"},
			labels.Options{},
			"Yes",
		},
		{
			"case insensitive",
			"YES",
			[]string{"Yes", "No"},
			labels.Options{},
			"Yes",
		},
		{
			"punctuation around label",
			"No.",
			[]string{"Yes", "No"},
			labels.Options{},
			"No",
		},
		{
			"word boundary not substring",
			"yessir",
			[]string{"Yes", "No"},
			labels.Options{},
			"",
		},
		{
			"label inside longer word rejected",
			"unknown",
			[]string{"no"},
			labels.Options{},
			"",
		},
		{
			"from start picks earliest",
			"yes, but actually no",
			[]string{"yes", "no"},
			labels.Options{FromStart: true},
			"yes",
		},
		{
			"default picks latest",
			"yes, but actually no",
			[]string{"yes", "no"},
			labels.Options{},
			"no",
		},
		{
			"leading prose before label",
			"Approved - meets all requirements and standards.",
			[]string{"Approved", "Denied"},
			labels.Options{},
			"Approved",
		},
		{
			"multi word label",
			"the outcome is not available right now",
			[]string{"no", "not available"},
			labels.Options{},
			"not available",
		},
		{
			"overlapping labels longest at boundary",
			"sorry, not now",
			[]string{"no", "not now"},
			labels.Options{},
			"not now",
		},
		{
			"underscore label matches spaced text",
			"this is a multi word class result",
			[]string{"multi_word_class"},
			labels.Options{},
			"multi_word_class",
		},
		{
			"multiple occurrences resolve by direction",
			"no means no",
			[]string{"no"},
			labels.Options{FromStart: true},
			"no",
		},
		{
			"empty input",
			"",
			[]string{"Yes", "No"},
			labels.Options{},
			"",
		},
		{
			"whitespace only input",
			"   \n\t ",
			[]string{"Yes", "No"},
			labels.Options{},
			"",
		},
		{
			"no match",
			"maybe later",
			[]string{"Yes", "No"},
			labels.Options{},
			"",
		},
		{
			"declaration order on identical ties",
			"ready",
			[]string{"Ready", "READY"},
			labels.Options{FromStart: true},
			"Ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels.Parse(tt.text, tt.classes, tt.opts)
			if got.Classification != tt.want {
				t.Errorf(
					"Parse(%q).Classification = %q, want %q",
					tt.text, got.Classification, tt.want,
				)
			}
		})
	}
}

func TestParseExplanation(t *testing.T) {
	t.Run("preserves original text", func(t *testing.T) {
		text := "  Approved - meets all requirements...  "
		got := labels.Parse(text, []string{"Approved", "Denied"}, labels.Options{})

		if got.Explanation != "Approved - meets all requirements..." {
			t.Errorf("Explanation = %q, want trimmed original", got.Explanation)
		}
		if got.Classification != "Approved" {
			t.Errorf("Classification = %q, want Approved", got.Classification)
		}
	})

	t.Run("set even without a match", func(t *testing.T) {
		got := labels.Parse("cannot say", []string{"Yes", "No"}, labels.Options{})
		if got.Explanation != "cannot say" {
			t.Errorf("Explanation = %q, want full text", got.Explanation)
		}
		if got.Classification != "" {
			t.Errorf("Classification = %q, want empty", got.Classification)
		}
	})

	t.Run("empty input yields empty explanation", func(t *testing.T) {
		got := labels.Parse("   ", []string{"Yes"}, labels.Options{})
		if got.Explanation != "" {
			t.Errorf("Explanation = %q, want empty", got.Explanation)
		}
	})
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name      string
		words     []string
		classes   []string
		opts      labels.Options
		wantLabel string
		wantStart int
		wantEnd   int
	}{
		{
			"longest label wins at equal start",
			[]string{"not", "now", "please"},
			[]string{"no", "not", "not now"},
			labels.Options{FromStart: true},
			"not now", 0, 2,
		},
		{
			"longest label wins at equal end",
			[]string{"it", "is", "not", "available"},
			[]string{"available", "not available"},
			labels.Options{},
			"not available", 2, 4,
		},
		{
			"rightmost end wins by default",
			[]string{"yes", "and", "no"},
			[]string{"yes", "no"},
			labels.Options{},
			"no", 2, 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := labels.BestMatch(tt.words, tt.classes, tt.opts)
			if !ok {
				t.Fatal("BestMatch found no match")
			}
			if m.Label != tt.wantLabel || m.Start != tt.wantStart || m.End != tt.wantEnd {
				t.Errorf(
					"BestMatch = {%q %d %d}, want {%q %d %d}",
					m.Label, m.Start, m.End,
					tt.wantLabel, tt.wantStart, tt.wantEnd,
				)
			}
		})
	}
}
