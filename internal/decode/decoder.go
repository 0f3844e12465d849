// Package decode turns background bytes into images.
package decode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"emojiart/internal/domain"
)

var log = logging.Logger("emojiart/decode")

// Decoder implements domain.ImageDecoder for png, jpeg, gif, bmp, tiff and webp
type Decoder struct{}

var _ domain.ImageDecoder = Decoder{}

// New returns a decoder
func New() Decoder {
	return Decoder{}
}

// Decode sniffs the content type and decodes the image. Failures wrap
// domain.ErrDecode.
func (Decoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(domain.ErrDecode, "no data")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.Wrapf(domain.ErrDecode, "unsupported content type %s", mtype.String())
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(domain.ErrDecode, "%s: %v", mtype.String(), err)
	}

	log.Debugw("decoded background", "format", format, "bounds", img.Bounds().String())
	return img, nil
}
