package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testImage builds a PNG with a red top half and blue bottom half.
func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := color.RGBA{R: 255, A: 255}
		if y >= h/2 {
			c = color.RGBA{B: 255, A: 255}
		}
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestRenderPassesThroughSmallImages(t *testing.T) {
	src := testImage(t, 100, 80)
	out, contentType, err := Render(bytes.NewReader(src), Options{Width: 2000, Height: 2000, Gravity: GravityTop, Quality: 100})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if decoded.Bounds().Dx() != 100 || decoded.Bounds().Dy() != 80 {
		t.Fatalf("expected unchanged dimensions, got %v", decoded.Bounds())
	}
}

func TestRenderTopAnchoredCrop(t *testing.T) {
	src := testImage(t, 100, 200)
	out, _, err := Render(bytes.NewReader(src), Options{Width: 50, Height: 50, Gravity: GravityTop, Quality: 100})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 50 {
		t.Fatalf("expected 50x50 crop, got %v", decoded.Bounds())
	}
	// Top gravity keeps the red upper half of the source.
	r, _, b, _ := decoded.At(decoded.Bounds().Min.X+25, decoded.Bounds().Min.Y+10).RGBA()
	if r <= b {
		t.Fatalf("expected red pixels from the top of the source, got r=%d b=%d", r, b)
	}
}

func TestRenderRejectsInvalidBox(t *testing.T) {
	if _, _, err := Render(bytes.NewReader(testImage(t, 10, 10)), Options{Width: 0, Height: 100}); err == nil {
		t.Fatalf("expected error for empty box")
	}
}

func TestRenderRejectsGarbage(t *testing.T) {
	if _, _, err := Render(bytes.NewReader([]byte("not an image")), DefaultOptions); err == nil {
		t.Fatalf("expected decode error")
	}
}
