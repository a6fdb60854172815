package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMalformedResponse  = fmt.Errorf("malformed response")

	// Composer errors
	ErrLoad               = fmt.Errorf("failed to load platform catalog")
	ErrNotLoaded          = fmt.Errorf("composer not initialized")
	ErrTooManyImages      = fmt.Errorf("too many images")
	ErrInvalidSelection   = fmt.Errorf("platform is not enabled")
	ErrUnknownPlatform    = fmt.Errorf("unknown platform")
	ErrNoPlatformSelected = fmt.Errorf("no platform selected")
	ErrEmptyContent       = fmt.Errorf("post content is empty")
	ErrExceedsLimit       = fmt.Errorf("post content exceeds character limit")
	ErrSubmitInProgress   = fmt.Errorf("a post is already being submitted")
	ErrSubmitFailed       = fmt.Errorf("post failed")
	ErrPartialFailure     = fmt.Errorf("post failed on some platforms")

	// Storage errors
	ErrRecordNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
