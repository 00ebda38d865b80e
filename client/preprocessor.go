package client

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PreprocessOptions controls image cleanup before OCR.
type PreprocessOptions struct {
	TargetHeight      int
	Greyscale         bool
	Normalize         bool
	Sharpen           float64
	BinarizeThreshold uint8
}

// DefaultPreprocessOptions are the fixed settings used for receipts.
var DefaultPreprocessOptions = PreprocessOptions{
	TargetHeight:      1600,
	Greyscale:         true,
	Normalize:         true,
	Sharpen:           1.0,
	BinarizeThreshold: 128,
}

// ImagePreprocessor prepares photographed receipts for OCR.
type ImagePreprocessor struct{}

func NewImagePreprocessor() *ImagePreprocessor {
	return &ImagePreprocessor{}
}

// PreprocessBytes decodes data and runs Preprocess on it.
func (p *ImagePreprocessor) PreprocessBytes(data []byte, opts PreprocessOptions) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return p.Preprocess(img, opts), nil
}

// Preprocess shrinks tall images to TargetHeight, converts to greyscale,
// stretches contrast, sharpens and binarises.
func (p *ImagePreprocessor) Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	out := imaging.Clone(img)

	if opts.TargetHeight > 0 && out.Bounds().Dy() > opts.TargetHeight {
		out = imaging.Resize(out, 0, opts.TargetHeight, imaging.Lanczos)
	}
	if opts.Greyscale {
		out = imaging.Grayscale(out)
	}
	if opts.Normalize {
		out = stretchContrast(out)
	}
	if opts.Sharpen > 0 {
		out = imaging.Sharpen(out, opts.Sharpen)
	}
	if opts.BinarizeThreshold > 0 {
		out = binarize(out, opts.BinarizeThreshold)
	}
	return out
}

// stretchContrast maps the darkest channel value to black and the brightest
// to white.
func stretchContrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		for _, v := range img.Pix[i : i+3] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if hi <= lo {
		return img
	}
	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = uint8(float64(c.R-lo) * scale)
		c.G = uint8(float64(c.G-lo) * scale)
		c.B = uint8(float64(c.B-lo) * scale)
		return c
	})
}

func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(0)
		if c.R >= threshold {
			v = 255
		}
		c.R, c.G, c.B = v, v, v
		return c
	})
}
