package index

import "errors"

var (
	// ErrNotFound is returned by a store when it attempts to look up
	// an entry that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingURL is returned when a store attempts to upsert a
	// document with an empty URL.
	ErrMissingURL = errors.New("document has a missing / empty URL")

	// ErrEmptyTerm is returned when a store attempts to upsert a term
	// with empty text.
	ErrEmptyTerm = errors.New("term has empty text")

	// ErrUnknownTag is returned when a tag posting references a tag that
	// is not indexed.
	ErrUnknownTag = errors.New("tag is not indexed")
)
