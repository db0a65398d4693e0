package domain

import "errors"

var (
	// ErrNotFound signals a missing category.
	ErrNotFound = errors.New("category not found")
	// ErrListingNotFound signals a missing listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidFilter signals a malformed explicit filter payload from the client.
	ErrInvalidFilter = errors.New("invalid filter payload")
	// ErrInvalidArgument signals an invalid request parameter or body.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRetrieval signals a store read or aggregation failure.
	// Surfaced as a generic server-side failure; never retried internally.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrParserProvider signals a model-backed parser API failure. Advisory:
	// the search flow absorbs it and proceeds without inferred filters.
	ErrParserProvider = errors.New("parser provider error")
)
