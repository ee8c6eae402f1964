package lexicon

import (
	"encoding/json"
	"strings"
	"unicode"
)

// WordEntry is a single headword of the lexicon. Entries are read-only once
// the store is seeded.
type WordEntry struct {
	ID           int64          `json:"id"`
	Word         string         `json:"word"`
	StrippedWord string         `json:"sw"`
	Phonetic     *string        `json:"phonetic,omitempty"`
	Definition   *string        `json:"definition,omitempty"`
	Translation  *string        `json:"translation,omitempty"`
	PartOfSpeech *string        `json:"pos,omitempty"`
	Collins      int            `json:"collins"`
	Oxford       int            `json:"oxford"`
	Tag          *string        `json:"tag,omitempty"`
	BNC          *int           `json:"bnc,omitempty"`
	FRQ          *int           `json:"frq,omitempty"`
	Exchange     *string        `json:"exchange,omitempty"`
	Detail       map[string]any `json:"detail,omitempty"`
	Audio        *string        `json:"audio,omitempty"`
}

// Suggestion is a row returned by Match.
type Suggestion struct {
	ID   int64  `json:"id"`
	Word string `json:"word"`
}

func (e WordEntry) IsOxfordCore() bool {
	return e.Oxford == 1
}

// Tags splits the space separated tag column, e.g. "zk gk cet4".
func (e WordEntry) Tags() []string {
	if e.Tag == nil {
		return nil
	}
	return strings.Fields(*e.Tag)
}

// ExchangeForm is one inflected form decoded from the exchange column.
type ExchangeForm struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Word  string `json:"word"`
}

var exchangeLabels = map[string]string{
	"p": "Past tense",
	"d": "Past participle",
	"i": "Present participle",
	"3": "Third person singular",
	"r": "Comparative",
	"t": "Superlative",
	"s": "Plural",
	"0": "Original",
	"1": "Variant",
}

// ExchangeForms decodes "p:went/d:gone/i:going/3:goes". Segments that are
// not exactly "code:word" are skipped.
func (e WordEntry) ExchangeForms() []ExchangeForm {
	if e.Exchange == nil || *e.Exchange == "" {
		return nil
	}

	var forms []ExchangeForm
	for _, segment := range strings.Split(*e.Exchange, "/") {
		parts := strings.Split(segment, ":")
		if len(parts) != 2 {
			continue
		}
		label, ok := exchangeLabels[parts[0]]
		if !ok {
			label = parts[0]
		}
		forms = append(forms, ExchangeForm{
			Code:  parts[0],
			Label: label,
			Word:  parts[1],
		})
	}
	return forms
}

// Strip returns the form of word used by the sw column: letters and digits
// only, lowercased.
func Strip(word string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, word))
}

// HasPrefix keeps the suggestions that really start with prefix. Match is a
// range scan, so callers that want strict prefix results filter with this.
func HasPrefix(suggestions []Suggestion, prefix string, strip bool) []Suggestion {
	key := func(s string) string {
		if strip {
			return Strip(s)
		}
		return strings.ToLower(s)
	}

	want := key(prefix)
	filtered := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if strings.HasPrefix(key(s.Word), want) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func decodeDetail(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var detail map[string]any
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil
	}
	return detail
}
