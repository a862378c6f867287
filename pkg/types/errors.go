package types

import "errors"

// Registry operation errors. A missing entity is never an error: reads report
// absence through their ok result and deletes of absent ids succeed.
var (
	ErrUnknownKind    = errors.New("unknown entity kind")
	ErrInvalidID      = errors.New("invalid entity ID")
	ErrInvalidArrow   = errors.New("arrow ID must be a (tail, head) pair")
	ErrInvalidAttrs   = errors.New("invalid attribute mapping")
	ErrUnsupportedKey = errors.New("key type not supported by backend")
)

// Store lifecycle errors.
var (
	ErrRegistryDetached = errors.New("registry is detached")
	ErrAlreadyAttached  = errors.New("registry is already attached")
)
