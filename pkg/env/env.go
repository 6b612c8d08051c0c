// Package env decides whether the rendering target can host the practice widget.
//
// The check runs once, before any markup is touched, and its result is passed
// to whatever renders the page.
package env

import (
	"bytes"
	"strings"
)

// Capability is a platform primitive the widget depends on.
type Capability string

const (
	SelectorQueries  Capability = "document.querySelector"
	SelectorQueryAll Capability = "document.querySelectorAll"
	Iteration        Capability = "Array.prototype.forEach"
	ObjectKeys       Capability = "Object.keys"
	CSSSupports      Capability = "window.CSS.supports"
	CSSCalc          Capability = "CSS: calc"
	CSSViewportUnits Capability = "CSS: vw unit"
	EventListeners   Capability = "element.addEventListener"
	ClassList        Capability = "element.classList"
	Dataset          Capability = "element.dataset"
	EmojiFont        Capability = "emoji font"
)

// Required lists the capabilities checked by Check, in reporting order.
// EmojiFont is decided by the glyph heuristic rather than by declaration.
var Required = []Capability{
	SelectorQueries,
	SelectorQueryAll,
	Iteration,
	ObjectKeys,
	CSSSupports,
	CSSCalc,
	CSSViewportUnits,
	EventListeners,
	ClassList,
	Dataset,
}

// Glyphs used by the emoji heuristic. They share a face shape, so a font
// without emoji renders both as the same replacement box.
const (
	glyphSad   = "😞"
	glyphHappy = "😃"
)

// Rasterizer renders a single glyph to a bitmap.
type Rasterizer interface {
	Rasterize(glyph string) ([]byte, error)
}

// Environment describes the rendering target.
type Environment struct {
	Available map[Capability]bool
	Glyphs    Rasterizer
	// Debug reports missing capabilities instead of skipping silently.
	Debug bool
}

// New returns an Environment where every required capability is available
// except the ones listed in missing.
func New(missing []string, glyphs Rasterizer, debug bool) Environment {
	available := make(map[Capability]bool, len(Required))
	for _, c := range Required {
		available[c] = true
	}
	for _, m := range missing {
		available[Capability(strings.TrimSpace(m))] = false
	}
	return Environment{Available: available, Glyphs: glyphs, Debug: debug}
}

// Report is the outcome of a capability check.
type Report struct {
	Missing []Capability
	Debug   bool
}

// Supported reports whether nothing is missing.
func (r Report) Supported() bool { return len(r.Missing) == 0 }

// Diagnostic lists every missing capability, one per line.
func (r Report) Diagnostic() string {
	if r.Supported() {
		return ""
	}
	lines := make([]string, 0, len(r.Missing)+1)
	lines = append(lines, "Not enhancing, missing features:")
	for _, m := range r.Missing {
		lines = append(lines, string(m))
	}
	return strings.Join(lines, "\n")
}

// Check tests every required capability and the emoji heuristic.
func Check(e Environment) Report {
	r := Report{Debug: e.Debug}
	for _, c := range Required {
		if !e.Available[c] {
			r.Missing = append(r.Missing, c)
		}
	}
	if !emojiDistinguishable(e.Glyphs) {
		r.Missing = append(r.Missing, EmojiFont)
	}
	return r
}

func emojiDistinguishable(g Rasterizer) bool {
	if g == nil {
		return false
	}
	a, err := g.Rasterize(glyphSad)
	if err != nil || len(a) == 0 {
		return false
	}
	b, err := g.Rasterize(glyphHappy)
	if err != nil || len(b) == 0 {
		return false
	}
	return !bytes.Equal(a, b)
}
