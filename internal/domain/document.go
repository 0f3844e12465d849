package domain

import "slices"

// Document is the full editable state: a background and an ordered list of
// emoji. Order is insertion order and is the z-order when rendered.
type Document struct {
	background Background
	emojis     []Emoji

	// lastID is the highest id ever assigned or loaded
	lastID int
}

// NewDocument creates an empty document with a blank background
func NewDocument() *Document {
	return &Document{
		background: Blank(),
		emojis:     make([]Emoji, 0),
	}
}

// DefaultDocument creates the first-run document with two seed emoji
func DefaultDocument() *Document {
	doc := NewDocument()
	doc.AddEmoji("🌺", Location{X: -100, Y: -100}, 40)
	doc.AddEmoji("🌷", Location{X: 50, Y: 50}, 30)
	return doc
}

// AddEmoji appends a new emoji with the next unique id and returns it
func (d *Document) AddEmoji(text string, at Location, size int) Emoji {
	d.lastID++
	emoji := Emoji{
		ID:   d.lastID,
		Text: text,
		X:    at.X,
		Y:    at.Y,
		Size: size,
	}
	d.emojis = append(d.emojis, emoji)
	return emoji
}

// FindIndex returns the position of the emoji with the given id
func (d *Document) FindIndex(id int) (int, bool) {
	for i, emoji := range d.emojis {
		if emoji.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Emoji returns the current state of the emoji with the given id
func (d *Document) Emoji(id int) (Emoji, bool) {
	index, ok := d.FindIndex(id)
	if !ok {
		return Emoji{}, false
	}
	return d.emojis[index], true
}

// MoveEmoji shifts the emoji by integer deltas. Unknown ids are ignored.
func (d *Document) MoveEmoji(id int, dx, dy int) bool {
	index, ok := d.FindIndex(id)
	if !ok {
		return false
	}
	d.emojis[index].X += dx
	d.emojis[index].Y += dy
	return true
}

// ResizeEmoji sets the point size of the emoji. Unknown ids are ignored.
func (d *Document) ResizeEmoji(id int, size int) bool {
	index, ok := d.FindIndex(id)
	if !ok {
		return false
	}
	d.emojis[index].Size = size
	return true
}

// SetBackground replaces the background as a whole
func (d *Document) SetBackground(background Background) {
	d.background = background
}

// Background returns the current background
func (d *Document) Background() Background {
	return d.background
}

// Emojis returns a copy of the emoji list in z-order
func (d *Document) Emojis() []Emoji {
	return slices.Clone(d.emojis)
}

// NextID returns the id the next AddEmoji call will assign
func (d *Document) NextID() int {
	return d.lastID + 1
}

// Clone returns a deep copy of the document, id counter included
func (d *Document) Clone() *Document {
	return &Document{
		background: d.background.clone(),
		emojis:     slices.Clone(d.emojis),
		lastID:     d.lastID,
	}
}

// Equal reports whether two documents hold the same background and the same
// emoji in the same order
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.background.Equal(other.background) && slices.Equal(d.emojis, other.emojis)
}
