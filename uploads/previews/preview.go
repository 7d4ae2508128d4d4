package uploads

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// PreviewWidth is the thumbnail width used for gallery listings.
const PreviewWidth = 200

// GenerateImagePreview decodes an image, resizes it to the given width
// preserving aspect ratio, and returns the re-encoded bytes. The output
// format follows the filename extension, falling back to JPEG.
func GenerateImagePreview(src io.Reader, filename string, width int) ([]byte, error) {
	img, err := imaging.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	preview := imaging.Resize(img, width, 0, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, preview, format); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
