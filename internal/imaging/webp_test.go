package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestToWebPKeepsSmallImages(t *testing.T) {
	out, err := ToWebP(bytes.NewReader(samplePNG(t, 40, 20)), 100)
	if err != nil {
		t.Fatalf("ToWebP() error = %v", err)
	}

	img, err := webp.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("bounds = %v, want 40x20", b)
	}
}

func TestToWebPShrinksLargeImages(t *testing.T) {
	out, err := ToWebP(bytes.NewReader(samplePNG(t, 200, 100)), 50)
	if err != nil {
		t.Fatalf("ToWebP() error = %v", err)
	}

	img, err := webp.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("bounds = %v, want 50x25", b)
	}
}

func TestToWebPRejectsNonImages(t *testing.T) {
	_, err := ToWebP(strings.NewReader("definitely not an image"), 0)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("ToWebP() err = %v, want ErrUnsupportedImage", err)
	}
}
