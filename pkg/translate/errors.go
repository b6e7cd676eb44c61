package translate

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid translate config")

	// ErrInvalidRequest is returned when source or target language is missing
	ErrInvalidRequest = errors.New("invalid translate request")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrTranslateFailed is returned when the service answers with an error
	ErrTranslateFailed = errors.New("translation failed")
)
