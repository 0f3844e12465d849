package domain

import (
	"context"
	"image"
)

// DocumentStore persists the serialized document at a single fixed location
type DocumentStore interface {
	// Save overwrites the stored document
	Save(ctx context.Context, data []byte) error
	// Load returns the stored document or ErrNotFound
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// ImageFetcher retrieves background bytes for a URL
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ImageDecoder turns raw bytes into a displayable image
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// Snapshot is a consistent view of the controller state published to observers
type Snapshot struct {
	// Revision increases with every published change
	Revision        uint64
	Document        *Document
	BackgroundImage image.Image
	FetchStatus     FetchStatus
}

// DocumentUseCase defines the intents and read side of the document controller
type DocumentUseCase interface {
	AddEmoji(text string, at Location, size float64) Emoji
	SetBackground(background Background)
	MoveEmoji(emoji Emoji, by Offset)
	ScaleEmoji(emoji Emoji, by float64)

	Snapshot() Snapshot
	Subscribe(observer func(Snapshot)) (unsubscribe func())

	Save(ctx context.Context) error
	Close() error
}
