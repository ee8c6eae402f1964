package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
)

const historyTimeLayout = "2006-01-02 15:04"

// Printer renders dictionary data for a terminal.
type Printer struct {
	writer io.Writer
	bold   *color.Color
	italic *color.Color
	faint  *color.Color
	green  *color.Color
	yellow *color.Color
}

func NewPrinter(writer io.Writer) *Printer {
	return &Printer{
		writer: writer,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		faint:  color.New(color.Faint),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
	}
}

func (p *Printer) write(s string) error {
	if _, err := io.WriteString(p.writer, s); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// PrintEntry prints the headword followed by whichever sections the entry has.
func (p *Printer) PrintEntry(entry *lexicon.WordEntry) error {
	var b strings.Builder

	b.WriteString(p.bold.Sprint(entry.Word))
	if entry.Phonetic != nil && *entry.Phonetic != "" {
		b.WriteString("  " + p.italic.Sprintf("/%s/", *entry.Phonetic))
	}
	b.WriteString("\n")

	if entry.PartOfSpeech != nil && *entry.PartOfSpeech != "" {
		b.WriteString(p.faint.Sprint("POS:") + " " + p.green.Sprint(*entry.PartOfSpeech) + "\n")
	}
	if entry.Translation != nil && *entry.Translation != "" {
		writeIndented(&b, *entry.Translation, "  ")
	}
	if entry.Definition != nil && *entry.Definition != "" {
		b.WriteString(p.faint.Sprint("Definition:") + "\n")
		writeIndented(&b, *entry.Definition, "  ")
	}

	var ranks []string
	if entry.Collins > 0 {
		ranks = append(ranks, "Collins "+p.yellow.Sprint(strings.Repeat("★", entry.Collins)))
	}
	if entry.IsOxfordCore() {
		ranks = append(ranks, p.green.Sprint("Oxford 3000"))
	}
	if entry.BNC != nil {
		ranks = append(ranks, fmt.Sprintf("BNC %d", *entry.BNC))
	}
	if entry.FRQ != nil {
		ranks = append(ranks, fmt.Sprintf("FRQ %d", *entry.FRQ))
	}
	if len(ranks) > 0 {
		b.WriteString(strings.Join(ranks, "  ") + "\n")
	}

	if tags := entry.Tags(); len(tags) > 0 {
		b.WriteString(p.faint.Sprint("Tags:") + " " + strings.Join(tags, " ") + "\n")
	}
	if forms := entry.ExchangeForms(); len(forms) > 0 {
		b.WriteString(p.faint.Sprint("Forms:") + "\n")
		for _, form := range forms {
			fmt.Fprintf(&b, "  %s: %s\n", form.Label, p.bold.Sprint(form.Word))
		}
	}
	if len(entry.Detail) > 0 {
		b.WriteString(p.faint.Sprint("Detailed Usage:") + "\n")
		keys := make([]string, 0, len(entry.Detail))
		for key := range entry.Detail {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", p.bold.Sprint(key), detailValue(entry.Detail[key]))
		}
	}

	return p.write(b.String())
}

func (p *Printer) PrintSuggestions(suggestions []lexicon.Suggestion) error {
	if len(suggestions) == 0 {
		return p.write("No suggestions\n")
	}

	var b strings.Builder
	for _, s := range suggestions {
		b.WriteString(s.Word + "\n")
	}
	return p.write(b.String())
}

// PrintHistory prints one line per record, most recent first as given.
func (p *Printer) PrintHistory(records []history.Record) error {
	if len(records) == 0 {
		return p.write("No history\n")
	}

	var b strings.Builder
	for _, r := range records {
		b.WriteString(p.faint.Sprint(r.LastQueriedAt.Format(historyTimeLayout)))
		b.WriteString("  " + p.bold.Sprint(r.Word))
		if r.Phonetic != nil && *r.Phonetic != "" {
			b.WriteString("  " + p.italic.Sprintf("/%s/", *r.Phonetic))
		}
		if r.Translation != nil && *r.Translation != "" {
			b.WriteString("  " + firstLine(*r.Translation))
		}
		b.WriteString("\n")
	}
	return p.write(b.String())
}

func (p *Printer) PrintWarning(format string, args ...any) error {
	return p.write(p.yellow.Sprintf("warning: "+format, args...) + "\n")
}

// detailValue renders a decoded JSON value on one line.
func detailValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

func writeIndented(b *strings.Builder, text, indent string) {
	for _, line := range strings.Split(strings.ReplaceAll(text, `\n`, "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(indent + line + "\n")
	}
}

func firstLine(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	if i := strings.Index(text, "\n"); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
