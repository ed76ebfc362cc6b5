// Package preview renders bounded-size previews of stored images.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// Gravity selects the anchor used when the scaled image must be cropped.
type Gravity string

const (
	GravityTop    Gravity = "top"
	GravityCenter Gravity = "center"
)

// Options bound the preview size and control crop anchor and JPEG quality.
type Options struct {
	Width   int
	Height  int
	Gravity Gravity
	Quality int // 1-100, JPEG only
}

// DefaultOptions matches the feed's standard preview: a 2000x2000 bound,
// top-anchored crop, full quality.
var DefaultOptions = Options{Width: 2000, Height: 2000, Gravity: GravityTop, Quality: 100}

// Render decodes a stored image and produces a preview no larger than the
// requested box. Images already inside the box pass through unscaled.
// Larger images are cover-scaled and cropped at the configured gravity.
// Returns the encoded preview and its content type.
func Render(r io.Reader, opts Options) ([]byte, string, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, "", fmt.Errorf("preview: box %dx%d is not valid", opts.Width, opts.Height)
	}
	src, srcFormat, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("preview: decode image: %w", err)
	}

	out := fit(src, opts)
	return encode(out, srcFormat, opts.Quality)
}

func fit(src image.Image, opts Options) image.Image {
	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	if sw <= opts.Width && sh <= opts.Height {
		return src
	}

	// Cover-scale: the smaller ratio fills the box, the overflow is cropped.
	scale := float64(opts.Width) / float64(sw)
	if hr := float64(opts.Height) / float64(sh); hr > scale {
		scale = hr
	}
	if scale > 1 {
		scale = 1
	}
	scaledW := int(float64(sw)*scale + 0.5)
	scaledH := int(float64(sh)*scale + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Over, nil)

	cropW := min(opts.Width, scaledW)
	cropH := min(opts.Height, scaledH)
	x := (scaledW - cropW) / 2
	y := 0
	if opts.Gravity != GravityTop {
		y = (scaledH - cropH) / 2
	}
	return scaled.SubImage(image.Rect(x, y, x+cropW, y+cropH))
}

func encode(img image.Image, srcFormat string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	if srcFormat == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("preview: encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	if quality <= 0 || quality > 100 {
		quality = 100
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("preview: encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
