package query

import "errors"

// ErrBadQuery is returned when a search expression cannot be parsed.
// Callers map it to a client error rather than a server fault.
var ErrBadQuery = errors.New("bad query")
