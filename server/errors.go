package server

import "errors"

var (
	// ErrMatcherRequired is returned when New is called without a matcher.
	ErrMatcherRequired = errors.New("matcher required")
)
