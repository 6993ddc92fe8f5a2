// internal/core/errors.go
package core

import "errors"

var (
	// ErrNoJSONObject is returned by ExtractJSON when the model reply
	// contains no brace-delimited object at all.
	ErrNoJSONObject = errors.New("could not parse JSON object from model response")
)
