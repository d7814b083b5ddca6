package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// logoPixels is the longest side of the embedded logo: 1in at 300 dpi.
const logoPixels = 300

// Logo is a decoded logo normalised to PNG.
type Logo struct {
	PNG []byte
	// Aspect is width divided by height.
	Aspect float64
}

// LoadLogo reads a PNG, JPEG, GIF, WebP or BMP file and re-encodes it as a
// PNG no larger than logoPixels on either side.
func LoadLogo(path string) (*Logo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo %s: %w", path, err)
	}
	return normaliseLogo(src, format)
}

func normaliseLogo(src image.Image, format string) (*Logo, error) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("logo has no pixels")
	}

	w, h := b.Dx(), b.Dy()
	if w > logoPixels || h > logoPixels {
		if w >= h {
			h = max(1, h*logoPixels/w)
			w = logoPixels
		} else {
			w = max(1, w*logoPixels/h)
			h = logoPixels
		}
	}

	var img image.Image = src
	if w != b.Dx() || h != b.Dy() || format != "png" {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}
	return &Logo{PNG: buf.Bytes(), Aspect: float64(w) / float64(h)}, nil
}
