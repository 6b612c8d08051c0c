package env

// tofu is the replacement box drawn for glyphs missing from the font.
var tofu = []byte{
	0xff, 0x81, 0x81, 0x81,
	0x81, 0x81, 0x81, 0xff,
}

// DeclaredGlyphs renders glyphs the way a client with or without an emoji
// font would: each glyph gets its own bitmap when EmojiFont is set, and every
// glyph outside the ASCII range collapses to the same replacement box otherwise.
type DeclaredGlyphs struct {
	EmojiFont bool
}

// Rasterize implements Rasterizer.
func (d DeclaredGlyphs) Rasterize(glyph string) ([]byte, error) {
	if d.EmojiFont || isASCII(glyph) {
		return []byte(glyph), nil
	}
	out := make([]byte, len(tofu))
	copy(out, tofu)
	return out, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
