package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// compressThreshold is where a PNG report gets re-encoded as JPEG regardless
// of the configured type; chat platforms choke on multi-megabyte images.
const compressThreshold = 1 << 20

// compress re-encodes the rendered image: JPEG at the configured quality when
// requested or when the PNG runs too large, best-compression PNG otherwise.
func compress(raw []byte, imageType string, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode rendered image: %w", err)
	}

	var buf bytes.Buffer
	if imageType == "jpeg" || len(raw) > compressThreshold {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
