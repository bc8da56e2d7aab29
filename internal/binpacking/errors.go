package binpacking

import "errors"

var (
	// ErrNoItems is returned when an instance has no items to pack.
	ErrNoItems = errors.New("instance must contain at least one item")
	// ErrItemCountMismatch is returned when the declared item count differs from the number of weights.
	ErrItemCountMismatch = errors.New("item count does not match the number of weights")
	// ErrInvalidCapacity is returned when the bin capacity is not a positive number.
	ErrInvalidCapacity = errors.New("capacity must be a positive number")
	// ErrInvalidWeight is returned when a weight is negative, NaN or infinite.
	ErrInvalidWeight = errors.New("weights must be finite non-negative numbers")
	// ErrItemTooHeavy is returned when a single item exceeds the bin capacity, so no packing exists.
	ErrItemTooHeavy = errors.New("item weight exceeds bin capacity")
	// ErrTooManyItems is returned when an instance is beyond the exact solver's operating limit.
	ErrTooManyItems = errors.New("too many items for exact search")
	// ErrSearchAborted is returned when the exact search is cancelled before it completes.
	ErrSearchAborted = errors.New("exact search aborted")
)
