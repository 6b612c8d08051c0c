package fcard

import "errors"

// Sentinel errors for the fcard package.
// Use errors.Is to check: errors.Is(err, fcard.ErrNoItemsFound)
var (
	ErrNoItemsFound    = errors.New("fcard: no items found")
	ErrInvalidArgument = errors.New("fcard: invalid argument")
	ErrInvalidItem     = errors.New("fcard: invalid item")
)
