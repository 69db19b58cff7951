package types

import (
	"path/filepath"
	"strings"
)

// Format identifies an output image format a batch can be converted to.
type Format string

const (
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatWEBP Format = "WEBP"
	FormatGIF  Format = "GIF"
	FormatTIFF Format = "TIFF"
	FormatBMP  Format = "BMP"
	FormatAVIF Format = "AVIF"
)

var formatExtensions = map[Format]string{
	FormatJPEG: ".jpg",
	FormatPNG:  ".png",
	FormatWEBP: ".webp",
	FormatGIF:  ".gif",
	FormatTIFF: ".tiff",
	FormatBMP:  ".bmp",
	FormatAVIF: ".avif",
}

// AllFormats returns the supported target formats in presentation order.
func AllFormats() []Format {
	return []Format{FormatJPEG, FormatPNG, FormatWEBP, FormatGIF, FormatTIFF, FormatBMP, FormatAVIF}
}

// ParseFormat resolves a user supplied token to a Format, case insensitively.
func ParseFormat(token string) (Format, bool) {
	f := Format(strings.ToUpper(strings.TrimSpace(token)))
	if _, ok := formatExtensions[f]; !ok {
		return "", false
	}
	return f, true
}

func (f Format) String() string { return string(f) }

// Ext returns the file extension written for this format, dot included.
func (f Format) Ext() string { return formatExtensions[f] }

var supportedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {},
	".gif": {}, ".tiff": {}, ".bmp": {}, ".avif": {},
}

// IsSupportedImageName reports whether the file name carries an extension
// the pipeline can decode.
func IsSupportedImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := supportedExtensions[ext]
	return ok
}

// OutputName swaps the extension of the original file name for the target
// format's extension.
func OutputName(original string, target Format) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	return base + target.Ext()
}
