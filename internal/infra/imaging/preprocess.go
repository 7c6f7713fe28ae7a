package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// Preprocessor implements analysis.Preprocessor for square NHWC models.
type Preprocessor struct {
	Size int
}

// New returns a preprocessor for the classifier input size.
func New() *Preprocessor {
	return &Preprocessor{Size: analysis.InputSize}
}

// Preprocess decodes, fits and normalizes an uploaded image.
func (p *Preprocessor) Preprocess(r io.Reader) (analysis.Sample, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return analysis.Sample{}, fmt.Errorf("%w: %v", analysis.ErrInvalidImage, err)
	}
	if b := src.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return analysis.Sample{}, fmt.Errorf("%w: empty %s image", analysis.ErrInvalidImage, format)
	}

	size := p.Size
	if size <= 0 {
		size = analysis.InputSize
	}
	fitted := Fit(src, size, size)
	return analysis.Sample{Image: fitted, Tensor: Normalize(fitted)}, nil
}

// Fit scales and center-crops src to exactly w x h, keeping aspect ratio.
// Transparent pixels end up on black.
func Fit(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect(src.Bounds(), w, h), draw.Over, nil)
	return dst
}

// cropRect is the largest centered region of b with aspect w:h.
func cropRect(b image.Rectangle, w, h int) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()
	cw, ch := bw, bh
	if bw*h > bh*w {
		// wider than target: trim the sides
		cw = bh * w / h
	} else {
		ch = bw * h / w
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (bw-cw)/2
	y0 := b.Min.Y + (bh-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// Normalize maps every RGB channel v to v/127.5 - 1.
func Normalize(img *image.RGBA) analysis.Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float32, 0, w*h*analysis.InputChannels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3]
			for _, v := range px {
				data = append(data, float32(v)/127.5-1)
			}
		}
	}
	return analysis.Tensor{
		Shape: [4]int64{1, int64(h), int64(w), analysis.InputChannels},
		Data:  data,
	}
}
