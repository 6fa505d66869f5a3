package objects

import "errors"

var (
	// ErrObjectNotFound is returned when no object is stored under a hash.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCorruptObject is returned when stored bytes cannot be decoded into a valid object.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrInvalidHash is returned for identifiers that are not 40 lowercase hex characters.
	ErrInvalidHash = errors.New("invalid object hash")
)
