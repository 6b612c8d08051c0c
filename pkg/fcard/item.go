package fcard

import (
	"fmt"
	"slices"
)

// Fragment is one language-tagged piece of text inside an item.
type Fragment struct {
	Lang           string // value of the lang attribute, e.g. "en" or "pl-PL"
	HTML           string // outer HTML of the element carrying the lang attribute
	Text           string // rendered text content
	Disambiguation string // optional hint shown next to the fragment
}

// Example is a page element referenced by an item as a usage example.
type Example struct {
	ID   string
	HTML string
	Text string
}

// Item is one learnable unit.
type Item struct {
	// Anchor points back to the source element: its id, or item-<n> in document order.
	Anchor string
	// HTML is the full rendering of the item, used as the answer.
	HTML string
	// Text is the rendered text of HTML.
	Text string
	// Languages lists codes in order of first appearance.
	Languages []string
	Fragments map[string][]Fragment
	Examples  []Example
	Tags      []string
}

// AddFragment appends f under its language, registering the language on first use.
func (it *Item) AddFragment(f Fragment) {
	if it.Fragments == nil {
		it.Fragments = make(map[string][]Fragment)
	}
	if _, ok := it.Fragments[f.Lang]; !ok {
		it.Languages = append(it.Languages, f.Lang)
	}
	it.Fragments[f.Lang] = append(it.Fragments[f.Lang], f)
}

// Clone returns a copy of it that shares no slices or maps with it.
func (it Item) Clone() Item {
	out := it
	out.Languages = slices.Clone(it.Languages)
	out.Examples = slices.Clone(it.Examples)
	out.Tags = slices.Clone(it.Tags)
	if it.Fragments != nil {
		out.Fragments = make(map[string][]Fragment, len(it.Fragments))
		for lang, fs := range it.Fragments {
			out.Fragments[lang] = slices.Clone(fs)
		}
	}
	return out
}

// Validate checks that the item can produce a question.
func (it Item) Validate() error {
	if len(it.Languages) == 0 {
		return fmt.Errorf("%w: %q has no language variants", ErrInvalidItem, it.Anchor)
	}
	if len(it.Languages) != len(it.Fragments) {
		return fmt.Errorf("%w: %q language list out of sync with fragments", ErrInvalidItem, it.Anchor)
	}
	for _, lang := range it.Languages {
		if len(it.Fragments[lang]) == 0 {
			return fmt.Errorf("%w: %q has empty variant list for %q", ErrInvalidItem, it.Anchor, lang)
		}
	}
	return nil
}

// DrawnQuestion is the result of one draw: a question fragment plus the whole
// owning item as the answer.
type DrawnQuestion struct {
	Question Fragment
	Answer   string
	Item     Item
	Examples []Example
	Tags     []string
}

// Question builds the DrawnQuestion for the given fragment of it.
func (it Item) Question(f Fragment) DrawnQuestion {
	return DrawnQuestion{
		Question: f,
		Answer:   it.HTML,
		Item:     it,
		Examples: it.Examples,
		Tags:     it.Tags,
	}
}
