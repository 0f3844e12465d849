package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emojiart/internal/domain"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecoder_PNG(t *testing.T) {
	img, err := New().Decode(encodePNG(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestDecoder_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("this is not an image")},
		{"html", []byte("<html><body>404</body></html>")},
		{"truncated png", encodePNG(t, 4, 3)[:30]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New().Decode(tt.data)
			assert.Nil(t, img)
			assert.True(t, errors.Is(err, domain.ErrDecode), "got %v", err)
		})
	}
}
