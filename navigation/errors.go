package navigation

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPath means a search exhausted its space without reaching the goal
	ErrNoPath = errors.New("navigation: no path found")

	// ErrIterationLimit means a search hit its iteration cap; callers treat it
	// exactly like ErrNoPath (errors.Is reports both)
	ErrIterationLimit = fmt.Errorf("navigation: iteration limit exceeded: %w", ErrNoPath)

	// ErrInvalidRequest marks a degenerate or non-navigable start/destination
	ErrInvalidRequest = errors.New("navigation: invalid request")
)
