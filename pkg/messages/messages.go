// Package messages provides the user-facing strings of the practice widget.
package messages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// ID identifies a message.
type ID string

const (
	StartPractice ID = "startPractice"
	RevealAnswer  ID = "revealAnswer"
	GotItWrong    ID = "gotItWrong"
	GotItCorrect  ID = "gotItCorrect"
	NoItemsError  ID = "noItemsError"
	EndPractice   ID = "endPractice"
)

// AttrOverrides carries a JSON object of message overrides.
const AttrOverrides = "data-fcard-messages"

// Catalog maps message ids to display strings.
type Catalog map[ID]string

// Get returns the message for id, or the id itself when unknown.
func (c Catalog) Get(id ID) string {
	if s, ok := c[id]; ok {
		return s
	}
	return string(id)
}

// Supported lists the built-in languages; the first one is the fallback.
var Supported = []string{"en", "pl"}

var builtin = map[string]Catalog{
	"en": {
		StartPractice: "Start practice",
		RevealAnswer:  "↷ show answer",
		GotItWrong:    "😞 got it wrong",
		GotItCorrect:  "😃 got it correct",
		NoItemsError:  "No flippin’ items found. 😞",
		EndPractice:   "❌",
	},
	"pl": {
		StartPractice: "Rozpocznij naukę",
		RevealAnswer:  "↷ pokaż odpowiedź",
		GotItWrong:    "😞 nie wiedziałem",
		GotItCorrect:  "😃 wiedziałem",
		NoItemsError:  "Nie znalazłem żadnych elementów do uczenia. 😞",
		EndPractice:   "❌",
	},
}

// Negotiate picks a supported language for lang, trying the tag as given,
// case-folded, its base subtag, and the case-folded base subtag, in that order.
// It falls back to the first supported language.
func Negotiate(lang string) string {
	fold := cases.Fold()
	base := lang
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		base = lang[:i]
	}
	for _, candidate := range []string{lang, fold.String(lang), base, fold.String(base)} {
		if _, ok := builtin[candidate]; ok {
			return candidate
		}
	}
	return Supported[0]
}

// Defaults returns a copy of the built-in catalog for lang.
func Defaults(lang string) Catalog {
	src := builtin[Negotiate(lang)]
	out := make(Catalog, len(src))
	for id, s := range src {
		out[id] = s
	}
	return out
}

// Select returns the catalog for lang with overrides applied. Override keys
// that are not known message ids are ignored.
func Select(lang string, overrides map[string]string) Catalog {
	c := Defaults(lang)
	for id := range c {
		if s, ok := overrides[string(id)]; ok {
			c[id] = s
		}
	}
	return c
}

// Overrides reads the override map from the first element carrying
// data-fcard-messages. A page without such an element has no overrides.
func Overrides(doc *html.Node) (map[string]string, error) {
	el := dom.QuerySelector(doc, "["+AttrOverrides+"]")
	if el == nil {
		return nil, nil
	}
	var overrides map[string]string
	if err := json.Unmarshal([]byte(dom.GetAttribute(el, AttrOverrides)), &overrides); err != nil {
		return nil, fmt.Errorf("parse %s: %w", AttrOverrides, err)
	}
	return overrides, nil
}

// FromDocument selects the catalog for the document's declared language,
// or fallbackLang when the root element has none, and applies page overrides.
// A malformed override map is reported alongside the default catalog.
func FromDocument(doc *html.Node, fallbackLang string) (Catalog, error) {
	lang := fallbackLang
	if root := dom.QuerySelector(doc, "html"); root != nil {
		if declared := strings.TrimSpace(dom.GetAttribute(root, "lang")); declared != "" {
			lang = declared
		}
	}
	overrides, err := Overrides(doc)
	if err != nil {
		return Defaults(lang), err
	}
	return Select(lang, overrides), nil
}
