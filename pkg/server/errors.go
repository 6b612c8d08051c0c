package server

import (
	"errors"
	"net/http"

	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/practice"
)

// ErrBadRequest marks malformed form input.
var ErrBadRequest = errors.New("server: bad request")

// StatusCode maps domain errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, practice.ErrNoSession),
		errors.Is(err, practice.ErrControlDisabled):
		return http.StatusConflict
	case errors.Is(err, practice.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, practice.ErrBadOutcome),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, fcard.ErrNoItemsFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// safeMessage keeps internal error details out of responses.
func safeMessage(err error) string {
	if errors.Is(err, practice.ErrControlDisabled) {
		return "this control is not available right now"
	}
	switch StatusCode(err) {
	case http.StatusConflict:
		return "no practice session is running"
	case http.StatusNotFound:
		return "no such card"
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnprocessableEntity:
		return "no items found"
	default:
		return "internal error"
	}
}
