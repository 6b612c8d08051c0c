package messages

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"pl":    "pl",
		"PL":    "pl",
		"pl-PL": "pl",
		"PL_pl": "pl",
		"en-GB": "en",
		"de":    "en",
		"":      "en",
	}
	for in, want := range cases {
		if got := Negotiate(in); got != want {
			t.Errorf("Negotiate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelectAppliesKnownOverridesOnly(t *testing.T) {
	c := Select("pl", map[string]string{
		"startPractice": "Ćwicz!",
		"bogus":         "ignored",
	})
	if c.Get(StartPractice) != "Ćwicz!" {
		t.Errorf("override not applied: %q", c.Get(StartPractice))
	}
	if c.Get(RevealAnswer) != "↷ pokaż odpowiedź" {
		t.Errorf("default not kept: %q", c.Get(RevealAnswer))
	}
	if _, ok := c["bogus"]; ok {
		t.Errorf("unknown id should not be added")
	}
}

func TestSelectDoesNotLeakBetweenCalls(t *testing.T) {
	Select("en", map[string]string{"startPractice": "Go"})
	if got := Select("en", nil).Get(StartPractice); got != "Start practice" {
		t.Fatalf("built-in catalog was mutated: %q", got)
	}
}

func TestFromDocument(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html lang="pl-PL"><body>
<div data-fcard-messages='{"gotItCorrect": "Tak!"}'></div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, err := FromDocument(doc, "en")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if c.Get(GotItCorrect) != "Tak!" || c.Get(StartPractice) != "Rozpocznij naukę" {
		t.Fatalf("unexpected catalog %v", c)
	}
}

func TestFromDocumentFallbackLanguageAndBadOverrides(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><body><i data-fcard-messages="{not json"></i></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, err := FromDocument(doc, "pl")
	if err == nil {
		t.Fatalf("expected error for malformed overrides")
	}
	if c.Get(StartPractice) != "Rozpocznij naukę" {
		t.Fatalf("expected pl defaults from fallback language, got %q", c.Get(StartPractice))
	}
}
