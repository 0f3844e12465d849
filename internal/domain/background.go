package domain

import (
	"bytes"
	"strconv"
)

// BackgroundKind identifies the active case of a Background
type BackgroundKind string

const (
	// BackgroundBlank means the document has no backdrop
	BackgroundBlank BackgroundKind = "blank"
	// BackgroundURL means the backdrop is a remote image reference
	BackgroundURL BackgroundKind = "url"
	// BackgroundImageData means the backdrop is embedded image bytes
	BackgroundImageData BackgroundKind = "imageData"
)

// Background is the document backdrop. Exactly one case is active; the zero
// value is blank.
type Background struct {
	kind BackgroundKind
	url  string
	data []byte
}

// Blank returns the blank background
func Blank() Background {
	return Background{kind: BackgroundBlank}
}

// URLBackground returns a background referencing a remote image
func URLBackground(rawURL string) Background {
	return Background{kind: BackgroundURL, url: rawURL}
}

// ImageDataBackground returns a background holding embedded image bytes.
// The bytes are copied.
func ImageDataBackground(data []byte) Background {
	return Background{kind: BackgroundImageData, data: bytes.Clone(data)}
}

// Kind returns the active case
func (b Background) Kind() BackgroundKind {
	if b.kind == "" {
		return BackgroundBlank
	}
	return b.kind
}

// URL returns the referenced URL and whether the background is the url case
func (b Background) URL() (string, bool) {
	if b.Kind() != BackgroundURL {
		return "", false
	}
	return b.url, true
}

// ImageData returns a copy of the embedded bytes and whether the background is
// the imageData case
func (b Background) ImageData() ([]byte, bool) {
	if b.Kind() != BackgroundImageData {
		return nil, false
	}
	return bytes.Clone(b.data), true
}

// IsBlank reports whether the background is blank
func (b Background) IsBlank() bool {
	return b.Kind() == BackgroundBlank
}

// Equal compares two backgrounds structurally per case
func (b Background) Equal(other Background) bool {
	if b.Kind() != other.Kind() {
		return false
	}
	switch b.Kind() {
	case BackgroundURL:
		return b.url == other.url
	case BackgroundImageData:
		return bytes.Equal(b.data, other.data)
	default:
		return true
	}
}

// String is used in log fields; embedded bytes are summarised by length
func (b Background) String() string {
	switch b.Kind() {
	case BackgroundURL:
		return "url(" + b.url + ")"
	case BackgroundImageData:
		return "imageData(" + strconv.Itoa(len(b.data)) + " bytes)"
	default:
		return "blank"
	}
}

func (b Background) clone() Background {
	b.data = bytes.Clone(b.data)
	return b
}
