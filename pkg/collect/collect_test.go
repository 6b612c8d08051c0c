package collect

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/japaniel/fcard/pkg/fcard"
	"golang.org/x/net/html"
)

func parseFixture(t *testing.T, name string) *html.Node {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()
	doc, err := html.Parse(f)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func parseString(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestScanVocabularyPage(t *testing.T) {
	store, err := Scan(parseFixture(t, "vocabulary.html"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	// The third element has no [lang] descendants and is skipped.
	if store.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", store.Len())
	}

	dog := store.Item(0)
	if dog.Anchor != "dog" {
		t.Errorf("expected anchor dog, got %q", dog.Anchor)
	}
	if got := strings.Join(dog.Languages, ","); got != "en,pl" {
		t.Errorf("expected languages en,pl in document order, got %s", got)
	}
	if n := len(dog.Fragments["pl"]); n != 2 {
		t.Fatalf("expected 2 pl fragments, got %d", n)
	}
	pies := dog.Fragments["pl"][0]
	if pies.Text != "pies" || pies.Disambiguation != "zwierzę" {
		t.Errorf("unexpected first pl fragment: %+v", pies)
	}
	if !strings.HasPrefix(pies.HTML, "<span lang=\"pl\"") {
		t.Errorf("expected fragment outer HTML, got %q", pies.HTML)
	}
	if len(dog.Examples) != 1 || dog.Examples[0].ID != "ex-dog" {
		t.Fatalf("expected the resolvable example only, got %+v", dog.Examples)
	}
	if !strings.Contains(dog.Examples[0].HTML, "barks.") {
		t.Errorf("example HTML missing text: %q", dog.Examples[0].HTML)
	}
	if strings.Join(dog.Tags, "|") != "animals|pets" {
		t.Errorf("unexpected tags %v", dog.Tags)
	}
	if !strings.Contains(dog.HTML, "data-fcard-item") {
		t.Errorf("answer HTML should be the item's outer HTML, got %q", dog.HTML)
	}

	cat := store.Item(1)
	if cat.Anchor != "item-2" {
		t.Errorf("expected positional anchor item-2, got %q", cat.Anchor)
	}
	if len(cat.Tags) != 0 {
		t.Errorf("empty tag attribute should give no tags, got %q", cat.Tags)
	}
	if cat.Fragments["ja"][0].Text != "猫" {
		t.Errorf("unexpected ja fragment %+v", cat.Fragments["ja"])
	}
}

func TestScanNoItems(t *testing.T) {
	doc := parseString(t, `<html><body><p lang="en">nothing flagged</p></body></html>`)
	store, err := Scan(doc)
	if !errors.Is(err, fcard.ErrNoItemsFound) {
		t.Fatalf("expected ErrNoItemsFound, got %v", err)
	}
	if store != nil {
		t.Fatalf("expected no partial store on failure")
	}
}

func TestScanOnlyUnusableItems(t *testing.T) {
	doc := parseString(t, `<div data-fcard-item>plain</div><div data-fcard-item><span lang="">x</span></div>`)
	if _, err := Scan(doc); !errors.Is(err, fcard.ErrNoItemsFound) {
		t.Fatalf("expected ErrNoItemsFound, got %v", err)
	}
}

func TestScanNilDocument(t *testing.T) {
	if _, err := Scan(nil); !errors.Is(err, fcard.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRenderedTextCollapsesWhitespace(t *testing.T) {
	items, err := (&Collector{}).Items(parseString(t, "<div data-fcard-item><b lang=\"en\">  a\n\t b </b></div>"))
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if got := items[0].Fragments["en"][0].Text; got != "a b" {
		t.Fatalf("expected collapsed text, got %q", got)
	}
}
