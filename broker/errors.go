package broker

import (
	"errors"
	"fmt"
)

// ErrUnknownSession signals that an account row that must already exist is
// missing. Under correct initialization this cannot happen, so callers treat
// it as an invariant violation and let it propagate.
var ErrUnknownSession = errors.New("unknown session")

// ErrNotConnected is returned by real-venue stubs for any operation
// attempted before Connect succeeds.
var ErrNotConnected = errors.New("broker not connected")

// InvalidOrderError reports a malformed order request: bad side, missing
// execution price, or a quantity that is not a positive lot multiple. Fatal
// to the order, not to the batch.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

// InsufficientFundsError is the expected policy rejection for a BUY whose
// cost exceeds available cash.
type InsufficientFundsError struct {
	Need float64
	Have float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %.2f, have %.2f", e.Need, e.Have)
}

// InsufficientPositionError is the expected policy rejection for a SELL of
// more shares than are held.
type InsufficientPositionError struct {
	Want int64
	Held int64
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position: want %d, held %d", e.Want, e.Held)
}

// IsRejection reports whether err is an expected policy outcome rather than
// a fault. Rejections are frequent and log at debug level; everything else
// signals a real failure.
func IsRejection(err error) bool {
	var inv *InvalidOrderError
	var funds *InsufficientFundsError
	var pos *InsufficientPositionError
	return errors.As(err, &inv) || errors.As(err, &funds) || errors.As(err, &pos)
}
