package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hazuki-dev/picshift/types"
)

// Normalize adjusts the pixel representation for the target format's
// encoder. Opaque targets reject alpha/palette input and alpha-capable
// encoders behave inconsistently on indexed input, so both cases are
// converted up-front.
func Normalize(img image.Image, target types.Format) image.Image {
	switch target {
	case types.FormatJPEG:
		if isPaletted(img) || !isOpaque(img) {
			return flattenOpaque(img)
		}
	case types.FormatWEBP, types.FormatAVIF:
		if !isTrueColor(img) {
			return toNRGBA(img)
		}
	}
	return img
}

func isPaletted(img image.Image) bool {
	_, ok := img.(*image.Paletted)
	return ok
}

func isTrueColor(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// flattenOpaque composites the image over black into an opaque RGBA buffer,
// dropping any alpha channel or palette.
func flattenOpaque(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// toNRGBA copies the image into an NRGBA buffer, adding an opaque alpha
// channel when the source has none.
func toNRGBA(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
