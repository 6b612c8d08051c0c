// Package fcard holds the flashcard domain: items scraped from a page, the
// immutable store built from them and the random question supplier.
package fcard

// Version returns the current version of the package.
func Version() string { return "0.2.0" }
