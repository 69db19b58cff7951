// Package imaging decodes, normalizes, and encodes single image buffers.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// WEBP decoding comes from x/image; the other decoders register through
	// the named imports above.
	_ "golang.org/x/image/webp"

	"github.com/hazuki-dev/picshift/types"
)

// DecodeError marks a per-item decode failure; non-fatal to a batch.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode failed: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError marks a per-item encode failure; non-fatal to a batch.
type EncodeError struct {
	Format types.Format
	Err    error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode to %s failed: %v", e.Format, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// Codec is the pixel-level capability the pipeline drives. Decode returns
// the pixel buffer and the detected source format name.
type Codec interface {
	Decode(data []byte) (image.Image, string, error)
	Encode(w io.Writer, img image.Image, target types.Format) error
}

// StdCodec implements Codec with the registered decoders above and one
// encoder per supported target format. AVIF decoding comes from gen2brain's
// registered init; WEBP and AVIF encoding go through gen2brain since
// x/image only decodes those.
type StdCodec struct{}

// NewStdCodec returns the default codec.
func NewStdCodec() *StdCodec {
	return &StdCodec{}
}

// Decode parses the buffer with whichever registered decoder matches.
func (c *StdCodec) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	return img, format, nil
}

// Encode writes img to w in the target format, normalizing the color mode
// first so the encoder never sees input it rejects.
func (c *StdCodec) Encode(w io.Writer, img image.Image, target types.Format) error {
	img = Normalize(img, target)

	var err error
	switch target {
	case types.FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case types.FormatPNG:
		err = png.Encode(w, img)
	case types.FormatGIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case types.FormatTIFF:
		err = tiff.Encode(w, img, nil)
	case types.FormatBMP:
		err = bmp.Encode(w, img)
	case types.FormatWEBP:
		err = webp.Encode(w, img)
	case types.FormatAVIF:
		err = avif.Encode(w, img)
	default:
		err = fmt.Errorf("unsupported target format: %s", target)
	}
	if err != nil {
		return &EncodeError{Format: target, Err: err}
	}
	return nil
}

// DetectFormat reports the format name of the buffer without a full decode,
// empty string when unreadable. Used for the staging status summary.
func DetectFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}
