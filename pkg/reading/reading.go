// Package reading produces kana readings for Japanese card content.
package reading

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Annotator computes hiragana readings with the IPA dictionary.
type Annotator struct {
	t *tokenizer.Tokenizer
}

// NewAnnotator creates a new tokenizer instance.
func NewAnnotator() (*Annotator, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Annotator{t: t}, nil
}

// Applies reports whether readings are shown for fragments in lang.
func Applies(lang string) bool {
	base := lang
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		base = lang[:i]
	}
	return strings.EqualFold(base, "ja")
}

// Reading returns the hiragana reading of text. It is empty when the reading
// would repeat the text, e.g. for words already written in hiragana.
func (a *Annotator) Reading(text string) string {
	var b strings.Builder
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		// IPA feature 7 is the reading in katakana; unknown words have none.
		features := token.Features()
		if len(features) > 7 && features[7] != "*" {
			b.WriteString(ToHiragana(features[7]))
		} else {
			b.WriteString(token.Surface)
		}
	}
	r := b.String()
	if r == strings.Join(strings.Fields(text), "") {
		return ""
	}
	return r
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
