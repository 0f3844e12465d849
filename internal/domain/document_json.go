package domain

import (
	"encoding/json"
	"math"
	"net/url"

	"github.com/pkg/errors"
)

// Canonical persisted form:
//
//	{"background": {"url": "<string>"} | {}, "emojis": [{"id","text","x","y","size"}, ...]}
//
// The imageData background is session-only and is written as {}.

type backgroundJSON struct {
	URL *string `json:"url,omitempty"`
}

type emojiJSON struct {
	ID   *int    `json:"id"`
	Text *string `json:"text"`
	X    *int    `json:"x"`
	Y    *int    `json:"y"`
	Size *int    `json:"size"`
}

type documentJSON struct {
	Background *backgroundJSON `json:"background"`
	Emojis     *[]*emojiJSON   `json:"emojis"`
}

// MarshalJSON encodes the document in its canonical persisted form
func (d *Document) MarshalJSON() ([]byte, error) {
	background := backgroundJSON{}
	if u, ok := d.background.URL(); ok {
		background.URL = &u
	}

	emojis := make([]*emojiJSON, 0, len(d.emojis))
	for i := range d.emojis {
		e := d.emojis[i]
		emojis = append(emojis, &emojiJSON{
			ID:   &e.ID,
			Text: &e.Text,
			X:    &e.X,
			Y:    &e.Y,
			Size: &e.Size,
		})
	}

	return json.Marshal(documentJSON{
		Background: &background,
		Emojis:     &emojis,
	})
}

// Encode serializes the document, reporting failures as ErrEncoding
func (d *Document) Encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(ErrEncoding, err.Error())
	}
	return data, nil
}

// UnmarshalDocument decodes a persisted document. It either returns a complete
// document or an error wrapping ErrMalformedDocument.
func UnmarshalDocument(data []byte) (*Document, error) {
	var wire documentJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrapf(ErrMalformedDocument, "invalid json: %v", err)
	}

	doc := NewDocument()

	if wire.Background != nil && wire.Background.URL != nil {
		raw := *wire.Background.URL
		if raw == "" {
			return nil, errors.Wrap(ErrMalformedDocument, "background url is empty")
		}
		if _, err := url.Parse(raw); err != nil {
			return nil, errors.Wrapf(ErrMalformedDocument, "background url: %v", err)
		}
		doc.background = URLBackground(raw)
	}

	if wire.Emojis == nil {
		return nil, errors.Wrap(ErrMalformedDocument, "missing emojis")
	}

	seen := make(map[int]struct{}, len(*wire.Emojis))
	for i, e := range *wire.Emojis {
		if e == nil || e.ID == nil || e.Text == nil || e.X == nil || e.Y == nil || e.Size == nil {
			return nil, errors.Wrapf(ErrMalformedDocument, "emoji %d: missing field", i)
		}
		if *e.ID == math.MaxInt {
			return nil, errors.Wrapf(ErrMalformedDocument, "emoji %d: id %d leaves no room for new ids", i, *e.ID)
		}
		if _, dup := seen[*e.ID]; dup {
			return nil, errors.Wrapf(ErrMalformedDocument, "emoji %d: duplicate id %d", i, *e.ID)
		}
		seen[*e.ID] = struct{}{}

		doc.emojis = append(doc.emojis, Emoji{
			ID:   *e.ID,
			Text: *e.Text,
			X:    *e.X,
			Y:    *e.Y,
			Size: *e.Size,
		})
		if *e.ID > doc.lastID {
			doc.lastID = *e.ID
		}
	}

	return doc, nil
}
