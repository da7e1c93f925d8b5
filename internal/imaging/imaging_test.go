package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	return img
}

func TestNormalizeKeepsSmallPhotos(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodeJPEG(100, 80)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	b := decode(t, out).Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("expected 100x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalizeDownscales(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 2048, 1024, 1024, 512},
		{"portrait", 1000, 3000, 341, 1024},
		{"square", 1500, 1500, 1024, 1024},
		{"sliver", 4000, 2, 1024, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(bytes.NewReader(encodePNG(solid(tt.w, tt.h, color.Black))))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			b := decode(t, out).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodePNG(solid(10, 10, color.Transparent))))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	r, g, b, _ := decode(t, out).At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestNormalizeRejectsUnsupported(t *testing.T) {
	var buf bytes.Buffer
	gif.Encode(&buf, solid(10, 10, color.Black), nil)

	for name, data := range map[string][]byte{
		"gif":  buf.Bytes(),
		"text": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Normalize(bytes.NewReader(data)); !errors.Is(err, ErrUnsupported) {
				t.Errorf("expected ErrUnsupported, got %v", err)
			}
		})
	}
}

func TestNormalizeRejectsOversizedUpload(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, encodeJPEG(10, 10))
	if _, err := Normalize(bytes.NewReader(data)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeJPEG(800, 400)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	thumb, err := Thumbnail(photo)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	b := decode(t, thumb).Bounds()
	if b.Dx() != ThumbDimension || b.Dy() != ThumbDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", ThumbDimension, ThumbDimension/2, b.Dx(), b.Dy())
	}
}
