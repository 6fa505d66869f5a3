package objects

import "github.com/KostasZigo/clony/utils"

// Object represents any Clony object that can be stored
// All Clony objects (blobs, trees, commits) must implement this interface
type Object interface {
	// Hash returns the SHA-1 hash of the object
	Hash() string

	// Type returns the object type written into the header
	Type() utils.ObjectType

	// Content returns the object payload without header
	Content() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte
}
