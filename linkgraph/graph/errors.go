package graph

import "errors"

var (
	// ErrNotFound is returned when a graph lookup targets a link that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownEdgeLinks is returned when an edge upsert references a
	// source and / or destination link that does not exist.
	ErrUnknownEdgeLinks = errors.New("unknown source and / or destination")
)
