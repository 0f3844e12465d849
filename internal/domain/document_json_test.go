package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_RoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.SetBackground(URLBackground("https://example.com/bg.jpg"))
	doc.AddEmoji("🐝", Location{X: 3, Y: -4}, 25)
	doc.AddEmoji("🌻", Location{X: -300, Y: 120}, 80)
	doc.AddEmoji("🐝", Location{X: 0, Y: 0}, 12)
	doc.MoveEmoji(2, 5, 5)

	data, err := doc.Encode()
	require.NoError(t, err)

	restored, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(restored))
	assert.Equal(t, doc.Emojis(), restored.Emojis())
	assert.Equal(t, doc.NextID(), restored.NextID())
}

func TestDocument_RoundTripBlank(t *testing.T) {
	doc := DefaultDocument()

	data, err := doc.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"background":{},"emojis":[
		{"id":1,"text":"🌺","x":-100,"y":-100,"size":40},
		{"id":2,"text":"🌷","x":50,"y":50,"size":30}]}`, string(data))

	restored, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(restored))
}

func TestDocument_ImageDataIsNotPersisted(t *testing.T) {
	doc := DefaultDocument()
	doc.SetBackground(ImageDataBackground([]byte{0x89, 'P', 'N', 'G'}))

	data, err := doc.Encode()
	require.NoError(t, err)

	restored, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.True(t, restored.Background().IsBlank())
	assert.Equal(t, doc.Emojis(), restored.Emojis())
}

func TestUnmarshalDocument_MissingBackgroundIsBlank(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(`{"emojis":[]}`))
	require.NoError(t, err)
	assert.True(t, doc.Background().IsBlank())
	assert.Empty(t, doc.Emojis())
}

func TestUnmarshalDocument_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `emoji art`},
		{"truncated", `{"background":{},"emojis":[`},
		{"missing emojis", `{"background":{}}`},
		{"null emojis", `{"emojis":null}`},
		{"emojis not array", `{"emojis":{}}`},
		{"missing id", `{"emojis":[{"text":"a","x":0,"y":0,"size":1}]}`},
		{"missing size", `{"emojis":[{"id":1,"text":"a","x":0,"y":0}]}`},
		{"null element", `{"emojis":[null]}`},
		{"string coordinate", `{"emojis":[{"id":1,"text":"a","x":"0","y":0,"size":1}]}`},
		{"fractional size", `{"emojis":[{"id":1,"text":"a","x":0,"y":0,"size":1.5}]}`},
		{"id at max int", `{"emojis":[{"id":9223372036854775807,"text":"a","x":0,"y":0,"size":1}]}`},
		{"duplicate id", `{"emojis":[{"id":1,"text":"a","x":0,"y":0,"size":1},{"id":1,"text":"b","x":0,"y":0,"size":1}]}`},
		{"url wrong type", `{"background":{"url":5},"emojis":[]}`},
		{"empty url", `{"background":{"url":""},"emojis":[]}`},
		{"bad url", `{"background":{"url":"http://[::1"},"emojis":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := UnmarshalDocument([]byte(tt.data))
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, ErrMalformedDocument), "got %v", err)
		})
	}
}
