package practice

import (
	"testing"

	"github.com/japaniel/fcard/pkg/fcard"
)

func testItem(anchor, lang, text string) fcard.Item {
	it := fcard.Item{
		Anchor: anchor,
		HTML:   `<li id="` + anchor + `" data-fcard-item><span lang="` + lang + `">` + text + `</span></li>`,
		Text:   text,
	}
	it.AddFragment(fcard.Fragment{Lang: lang, Text: text, HTML: `<span lang="` + lang + `">` + text + `</span>`})
	return it
}

func question(it fcard.Item) fcard.DrawnQuestion {
	return it.Question(it.Fragments[it.Languages[0]][0])
}

func fixedSupplier(t *testing.T, items ...fcard.Item) *fcard.FixedSupplier {
	t.Helper()
	qs := make([]fcard.DrawnQuestion, len(items))
	for i, it := range items {
		qs[i] = question(it)
	}
	s, err := fcard.NewFixedSupplier(qs...)
	if err != nil {
		t.Fatalf("fixed supplier: %v", err)
	}
	return s
}

type judgement struct {
	card    *Card
	outcome Outcome
}

// newTestCard returns a card on a fresh backdrop and the verdicts it reports.
func newTestCard(t *testing.T, supplier fcard.Supplier, opts ...CardOption) (*Card, *Backdrop, *[]judgement) {
	t.Helper()
	b := newBackdrop(nil)
	var got []judgement
	c, err := NewCard(b, supplier, func(c *Card, o Outcome) { got = append(got, judgement{c, o}) }, opts...)
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}
	b.attach(c)
	return c, b, &got
}
