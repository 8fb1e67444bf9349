// Package imaging prepares page rasters for OCR.
//
// Preprocess loads the page into an OpenCV matrix, converts it to grayscale
// and runs a fixed chain: contrast, sharpen, median denoise, then an
// optional hard threshold. Steps that are switched off leave the image
// untouched.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"gocv.io/x/gocv"
)

// Options selects the preprocessing steps.
type Options struct {
	// Contrast scales each pixel's distance from the mean luminance.
	// 1.0 (or 0) disables the step.
	Contrast float64 `json:"contrast" yaml:"contrast"`
	Sharpen  bool    `json:"sharpen" yaml:"sharpen"`
	Denoise  bool    `json:"denoise" yaml:"denoise"`
	Binarize bool    `json:"binarize" yaml:"binarize"`
}

// step maps one matrix to a new one. The input is left for the caller to
// close.
type step func(gocv.Mat) gocv.Mat

func (o Options) steps() []step {
	var s []step
	if o.Contrast > 0 && o.Contrast != 1.0 {
		factor := o.Contrast
		s = append(s, func(m gocv.Mat) gocv.Mat { return contrast(m, factor) })
	}
	if o.Sharpen {
		s = append(s, sharpen)
	}
	if o.Denoise {
		s = append(s, median)
	}
	if o.Binarize {
		s = append(s, binarize)
	}
	return s
}

// Preprocess returns a new grayscale image with the enabled steps applied
// in order. The input is not modified.
func Preprocess(img image.Image, opts Options) (*image.Gray, error) {
	m, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer func() { m.Close() }()

	for _, fn := range opts.steps() {
		next := fn(m)
		m.Close()
		m = next
	}
	return toGray(m)
}

// Grayscale returns a single-channel copy of img with its origin at (0,0).
func Grayscale(img image.Image) (*image.Gray, error) {
	m, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return toGray(m)
}

// Contrast moves every pixel away from (factor > 1) or toward (factor < 1)
// the image's mean luminance.
func Contrast(src *image.Gray, factor float64) (*image.Gray, error) {
	return apply(src, func(m gocv.Mat) gocv.Mat { return contrast(m, factor) })
}

// Sharpen applies a 3x3 sharpening kernel, centre 2 and neighbours -1/8.
// Borders replicate the edge pixels.
func Sharpen(src *image.Gray) (*image.Gray, error) {
	return apply(src, sharpen)
}

// Median replaces each pixel with the median of its 3x3 neighbourhood.
func Median(src *image.Gray) (*image.Gray, error) {
	return apply(src, median)
}

// Binarize thresholds at the mid-range intensity (min+max)/2: pixels at or
// above it become white, the rest black. A uniform image becomes all white.
func Binarize(src *image.Gray) (*image.Gray, error) {
	return apply(src, binarize)
}

// EncodePNG encodes img for handing to an OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func apply(src *image.Gray, fn step) (*image.Gray, error) {
	m, err := grayMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	out := fn(m)
	defer out.Close()
	return toGray(out)
}

func contrast(src gocv.Mat, factor float64) gocv.Mat {
	dst := gocv.NewMat()
	if src.Empty() {
		src.CopyTo(&dst)
		return dst
	}
	mean := src.Mean().Val1
	src.ConvertToWithParams(&dst, gocv.MatTypeCV8U, float32(factor), float32(mean*(1-factor)))
	return dst
}

func sharpen(src gocv.Mat) gocv.Mat {
	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			kernel.SetFloatAt(r, c, -0.125)
		}
	}
	kernel.SetFloatAt(1, 1, 2)

	dst := gocv.NewMat()
	gocv.Filter2D(src, &dst, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderReplicate)
	return dst
}

func median(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.MedianBlur(src, &dst, 3)
	return dst
}

func binarize(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	if src.Empty() {
		src.CopyTo(&dst)
		return dst
	}
	lo, hi, _, _ := gocv.MinMaxLoc(src)
	// ThresholdBinary keeps values strictly above thresh.
	thresh := float32(math.Ceil(float64(lo+hi)/2)) - 1
	gocv.Threshold(src, &dst, thresh, 255, gocv.ThresholdBinary)
	return dst
}

// grayMat loads img as a single-channel 8-bit matrix.
func grayMat(img image.Image) (gocv.Mat, error) {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) && g.Stride == g.Rect.Dx() {
		m, err := gocv.ImageGrayToMatGray(g)
		if err != nil {
			return gocv.NewMat(), fmt.Errorf("failed to load gray image: %w", err)
		}
		return m, nil
	}

	rgba, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to load image: %w", err)
	}
	defer rgba.Close()
	gray := gocv.NewMat()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}

func toGray(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0)), nil
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert matrix: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected matrix image type %T", img)
	}
	return g, nil
}
