package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = noColor
	})

	var buf bytes.Buffer
	return NewPrinter(&buf), &buf
}

func TestPrinter_PrintEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *lexicon.WordEntry
		want  string
	}{
		{
			name: "full entry",
			entry: &lexicon.WordEntry{
				Word:         "go",
				Phonetic:     ptr("gəu"),
				PartOfSpeech: ptr("v:80/n:20"),
				Translation:  ptr("vi. 去, 走\\nn. 围棋"),
				Definition:   ptr("v. move\nn. a board game"),
				Collins:      5,
				Oxford:       1,
				Tag:          ptr("zk gk"),
				BNC:          ptr(45),
				FRQ:          ptr(0),
				Exchange:     ptr("p:went/d:gone"),
				Detail: map[string]any{
					"note":     "informal",
					"level":    float64(2),
					"examples": []any{"go home"},
				},
			},
			want: "go  /gəu/\n" +
				"POS: v:80/n:20\n" +
				"  vi. 去, 走\n" +
				"  n. 围棋\n" +
				"Definition:\n" +
				"  v. move\n" +
				"  n. a board game\n" +
				"Collins ★★★★★  Oxford 3000  BNC 45  FRQ 0\n" +
				"Tags: zk gk\n" +
				"Forms:\n" +
				"  Past tense: went\n" +
				"  Past participle: gone\n" +
				"Detailed Usage:\n" +
				"  examples: [\"go home\"]\n" +
				"  level: 2\n" +
				"  note: informal\n",
		},
		{
			name: "zero ranks are printed and absent ranks are not",
			entry: &lexicon.WordEntry{
				Word: "zip",
				BNC:  ptr(0),
			},
			want: "zip\n" +
				"BNC 0\n",
		},
		{
			name:  "headword only",
			entry: &lexicon.WordEntry{Word: "xyzzy"},
			want:  "xyzzy\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer, buf := newTestPrinter(t)
			require.NoError(t, printer.PrintEntry(tt.entry))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_PrintSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		suggestions []lexicon.Suggestion
		want        string
	}{
		{
			name:        "words",
			suggestions: []lexicon.Suggestion{{ID: 1, Word: "about"}, {ID: 2, Word: "apple"}},
			want:        "about\napple\n",
		},
		{
			name: "none",
			want: "No suggestions\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer, buf := newTestPrinter(t)
			require.NoError(t, printer.PrintSuggestions(tt.suggestions))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_PrintHistory(t *testing.T) {
	tests := []struct {
		name    string
		records []history.Record
		want    string
	}{
		{
			name: "records",
			records: []history.Record{
				{Word: "banana", LastQueriedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)},
				{
					Word:          "apple",
					Phonetic:      ptr("'æpl"),
					Translation:   ptr("n. 苹果\nn. 苹果树"),
					LastQueriedAt: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
				},
			},
			want: "2026-03-04 10:30  banana\n" +
				"2026-03-04 09:00  apple  /'æpl/  n. 苹果\n",
		},
		{
			name: "empty",
			want: "No history\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer, buf := newTestPrinter(t)
			require.NoError(t, printer.PrintHistory(tt.records))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_PrintWarning(t *testing.T) {
	printer, buf := newTestPrinter(t)
	require.NoError(t, printer.PrintWarning("speech unavailable: %s", "timeout"))
	assert.Equal(t, "warning: speech unavailable: timeout\n", buf.String())
}
