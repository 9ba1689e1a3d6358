package canopy

import "errors"

// Sequencing violation: the host called Update or Draw before both
// Initialize and LoadContent completed. Fatal; never retried.
var ErrNotInitialized = errors.New("engine used before Initialize and LoadContent")

// Invalid geometry input.
var (
	ErrNegativeScale   = errors.New("scale components must be non-negative")
	ErrNoTexture       = errors.New("object has no texture")
	ErrDegenerateScale = errors.New("parent world scale has a zero component")
)

// Structural misuse of the object graph.
var (
	ErrCycle           = errors.New("parent assignment would create a cycle")
	ErrDestroyed       = errors.New("object has been destroyed")
	ErrDetached        = errors.New("object is not attached to a live container")
	ErrForeignObject   = errors.New("objects belong to different engines")
	ErrAlreadyAttached = errors.New("script is already attached to a host")
	ErrNotChild        = errors.New("object is not a child of this parent")
)
