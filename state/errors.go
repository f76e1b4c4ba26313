package state

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("state: entry not found")
	ErrSuperseded = errors.New("state: superseded by a newer request")
	ErrNoApp      = errors.New("state: no app in context")
)

// superseded reports a response dropped because a newer request started. The
// request's own error, if any, stays reachable with errors.Is/As.
func superseded(err error) error {
	if err == nil {
		return ErrSuperseded
	}
	return fmt.Errorf("%w: %w", ErrSuperseded, err)
}
