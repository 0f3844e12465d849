package domain

import "github.com/pkg/errors"

// Error kinds surfaced by the document core. None of them is fatal: callers
// log them and carry on.
var (
	// ErrMalformedDocument means persisted JSON does not match the document schema
	ErrMalformedDocument = errors.New("malformed document")
	// ErrEncoding means the document could not be serialized
	ErrEncoding = errors.New("document encoding failed")
	// ErrWrite means the serialized document could not be written
	ErrWrite = errors.New("document write failed")
	// ErrNotFound means no document has been persisted yet
	ErrNotFound = errors.New("document not found")
	// ErrFetch means the background bytes could not be retrieved
	ErrFetch = errors.New("background fetch failed")
	// ErrDecode means the background bytes are not a valid image
	ErrDecode = errors.New("background decode failed")
)
