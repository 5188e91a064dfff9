// Package capture saves rendered frames as lossless WebP screenshots.
package capture

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// PixelReader reads RGBA8 pixels from the current read framebuffer, bottom
// row first. opengl.Device implements it.
type PixelReader interface {
	ReadPixels(x, y, width, height int32) []byte
}

// Frame turns a bottom-up RGBA8 readback into a top-down image. Alpha is forced
// opaque since the window's alpha channel carries no meaning.
func Frame(pix []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("capture: invalid size %dx%d", width, height)
	}
	stride := width * 4
	if len(pix) != stride*height {
		return nil, fmt.Errorf("capture: got %d bytes for %dx%d", len(pix), width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := pix[(height-1-y)*stride : (height-y)*stride]
		dst := img.Pix[y*img.Stride : y*img.Stride+stride]
		copy(dst, src)
		for x := 3; x < stride; x += 4 {
			dst[x] = 0xFF
		}
	}
	return img, nil
}

// Scale resizes img to the given width, keeping its aspect ratio.
func Scale(img *image.RGBA, width int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() {
		return img
	}
	height := max(b.Dy()*width/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("capture: WebP encode: %w", err)
	}
	return nil
}

// Writer saves frames into Dir as capture-<unix nanos>.webp.
type Writer struct {
	Dir   string
	Width int // 0 keeps the frame width

	now func() time.Time
}

func NewWriter(dir string, width int) *Writer {
	return &Writer{Dir: dir, Width: width, now: time.Now}
}

// Capture reads the whole viewport from r and saves it. It returns the path
// written.
func (w *Writer) Capture(r PixelReader, width, height int) (string, error) {
	pix := r.ReadPixels(0, 0, int32(width), int32(height))
	img, err := Frame(pix, width, height)
	if err != nil {
		return "", err
	}
	return w.Save(Scale(img, w.Width))
}

// Save encodes img to a new file in Dir.
func (w *Writer) Save(img image.Image) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("capture-%d.webp", w.now().UnixNano()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	b := img.Bounds()
	log.Printf("[Capture] Saved %dx%d frame to %s", b.Dx(), b.Dy(), path)
	return path, nil
}
