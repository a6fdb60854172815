package composer

import (
	"fmt"

	"github.com/desertthunder/crosspost/internal/shared"
)

// LoadError reports a failed catalog fetch. It matches [shared.ErrLoad] and the underlying cause.
type LoadError struct {
	Endpoint string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: %s: %v", shared.ErrLoad, e.Endpoint, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{shared.ErrLoad, e.Err} }

// PlatformError attributes a validation failure to a platform.
type PlatformError struct {
	Platform string
	Err      error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %v", shared.DisplayName(e.Platform), e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }
