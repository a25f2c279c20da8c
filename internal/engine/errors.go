package engine

import "fmt"

// ParseError is a parser assertion failure: the cached JSON violated a shape
// the engine depends on (most often an unresolvable bill type, which means
// the upstream dataset drifted). It fails the current type; other types
// continue.
type ParseError struct {
	OCDID  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.OCDID, e.Reason)
}

func parseErrorf(ocdID, format string, args ...interface{}) *ParseError {
	return &ParseError{OCDID: ocdID, Reason: fmt.Sprintf(format, args...)}
}
