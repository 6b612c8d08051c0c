package env

import (
	"errors"
	"strings"
	"testing"
)

type failingGlyphs struct{}

func (failingGlyphs) Rasterize(string) ([]byte, error) { return nil, errors.New("no canvas") }

func TestCheckSupported(t *testing.T) {
	r := Check(New(nil, DeclaredGlyphs{EmojiFont: true}, false))
	if !r.Supported() {
		t.Fatalf("expected supported, missing %v", r.Missing)
	}
	if r.Diagnostic() != "" {
		t.Fatalf("expected empty diagnostic, got %q", r.Diagnostic())
	}
}

func TestCheckAnyMissingPrimitive(t *testing.T) {
	for _, c := range Required {
		r := Check(New([]string{string(c)}, DeclaredGlyphs{EmojiFont: true}, false))
		if r.Supported() {
			t.Errorf("missing %q should make the environment unsupported", c)
		}
		if len(r.Missing) != 1 || r.Missing[0] != c {
			t.Errorf("expected only %q missing, got %v", c, r.Missing)
		}
	}
}

func TestCheckEmojiHeuristic(t *testing.T) {
	r := Check(New(nil, DeclaredGlyphs{EmojiFont: false}, false))
	if r.Supported() || r.Missing[0] != EmojiFont {
		t.Fatalf("indistinguishable emoji should be reported, got %v", r.Missing)
	}
	if r := Check(New(nil, failingGlyphs{}, false)); r.Supported() {
		t.Fatalf("rasterizer failure should be reported as missing emoji font")
	}
	if r := Check(New(nil, nil, false)); r.Supported() {
		t.Fatalf("missing rasterizer should be reported as missing emoji font")
	}
}

func TestDiagnosticListsEveryMissingCapability(t *testing.T) {
	r := Check(New([]string{string(CSSCalc), string(Dataset)}, nil, true))
	d := r.Diagnostic()
	for _, want := range []string{"Not enhancing", string(CSSCalc), string(Dataset), string(EmojiFont)} {
		if !strings.Contains(d, want) {
			t.Errorf("diagnostic %q missing %q", d, want)
		}
	}
	if !r.Debug {
		t.Errorf("debug flag not carried into report")
	}
}
