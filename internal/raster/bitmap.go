// internal/raster/bitmap.go
package raster

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Threshold is the 16-bit luminance below which a pixel is printed
const Threshold = 0x8000

const (
	// MaxBandHeight is the tallest slice sent in one GS v 0 command. Printers
	// differ on the yH limit; 1024 rows is accepted by all common models.
	MaxBandHeight = 1024

	// MaxLogoHeight caps the printed logo, about 25cm at 203 dpi
	MaxLogoHeight = 2048
)

// Bitmap is a 1-bit image packed MSB first, Stride bytes per row
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Data   []byte
}

// Scale shrinks img to maxWidth keeping the aspect ratio. Narrower images are returned
// unchanged.
func Scale(img image.Image, maxWidth int) image.Image {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	return resize.Resize(uint(maxWidth), 0, img, resize.Bilinear)
}

// ToBitmap converts img to a packed bitmap. Transparent pixels are composited on white.
func ToBitmap(img image.Image) *Bitmap {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := (width + 7) / 8

	bm := &Bitmap{
		Width:  width,
		Height: height,
		Stride: stride,
		Data:   make([]byte, stride*height),
	}

	for y := 0; y < height; y++ {
		row := bm.Data[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			if isDark(img.At(bounds.Min.X+x, bounds.Min.Y+y)) {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return bm
}

func isDark(c color.Color) bool {
	r, g, b, a := c.RGBA()
	// RGBA is alpha premultiplied; add the white showing through
	white := 0xFFFF - a
	r += white
	g += white
	b += white

	lum := (299*r + 587*g + 114*b) / 1000
	return lum < Threshold
}

// Command wraps the bitmap in GS v 0 raster bit image commands (normal density),
// one per band of at most MaxBandHeight rows
func (bm *Bitmap) Command() []byte {
	bands := (bm.Height + MaxBandHeight - 1) / MaxBandHeight
	out := make([]byte, 0, len(bm.Data)+8*bands)
	for top := 0; top < bm.Height; top += MaxBandHeight {
		rows := min(MaxBandHeight, bm.Height-top)
		out = append(out,
			0x1D, 0x76, 0x30, 0x00,
			byte(bm.Stride), byte(bm.Stride>>8),
			byte(rows), byte(rows>>8),
		)
		out = append(out, bm.Data[top*bm.Stride:(top+rows)*bm.Stride]...)
	}
	return out
}

// Crop keeps the top maxHeight rows. Shorter bitmaps are returned unchanged.
func (bm *Bitmap) Crop(maxHeight int) *Bitmap {
	if maxHeight <= 0 || bm.Height <= maxHeight {
		return bm
	}
	return &Bitmap{
		Width:  bm.Width,
		Height: maxHeight,
		Stride: bm.Stride,
		Data:   bm.Data[:maxHeight*bm.Stride],
	}
}

// Bit returns 1 when the pixel at x, y prints
func (bm *Bitmap) Bit(x, y int) byte {
	return (bm.Data[y*bm.Stride+x/8] >> uint(7-x%8)) & 1
}
