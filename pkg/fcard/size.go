package fcard

import "unicode/utf8"

// Length thresholds for content sizing, in characters.
const (
	ShortBelow = 7
	LongAbove  = 100
)

// Size is a presentational sizing hint for card content.
type Size int

const (
	SizeNormal Size = iota
	SizeShort
	SizeLong
)

func (s Size) String() string {
	switch s {
	case SizeShort:
		return "short"
	case SizeLong:
		return "long"
	default:
		return "normal"
	}
}

// ClassifySize tags text shorter than ShortBelow as short and longer than LongAbove as long.
func ClassifySize(text string) Size {
	n := utf8.RuneCountInString(text)
	switch {
	case n < ShortBelow:
		return SizeShort
	case n > LongAbove:
		return SizeLong
	default:
		return SizeNormal
	}
}
