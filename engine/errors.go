package engine

import (
	"errors"
	"fmt"
)

// ErrContextUnavailable signals that no usable GPU presentation context could
// be obtained for a surface: the platform window could not be created, no
// adapter matched the power preference, or device acquisition failed. Callers
// match it with errors.Is and degrade to the CPU fallback presentation
// instead of treating the condition as fatal.
var ErrContextUnavailable = errors.New("graphics context unavailable")

// DuplicateSurfaceError reports a CreateSurface call reusing an id that is
// already in the surface pool. The existing surface is left untouched.
type DuplicateSurfaceError struct {
	ID string // the surface id that collided
}

func (e *DuplicateSurfaceError) Error() string {
	return fmt.Sprintf("surface %q already exists", e.ID)
}
