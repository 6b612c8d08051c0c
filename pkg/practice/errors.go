package practice

import "errors"

var (
	ErrNoSession   = errors.New("practice: no live session")
	ErrUnknownCard = errors.New("practice: unknown card")
	ErrBadOutcome  = errors.New("practice: unknown outcome")
	// ErrControlDisabled is returned when acting through a control that is switched off.
	ErrControlDisabled = errors.New("practice: control disabled")
)
