package domain

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidCriteria = errors.New("invalid filter criteria")
)
