package searchd

import "github.com/openlistings/searchd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCategoryNotFound = domain.ErrNotFound
	ErrListingNotFound  = domain.ErrListingNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidFilter    = domain.ErrInvalidFilter
	ErrInvalidArgument  = domain.ErrInvalidArgument
	ErrRetrieval        = domain.ErrRetrieval
)
