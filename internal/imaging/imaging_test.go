package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func grayFrom(rows [][]uint8) *image.Gray {
	h, w := len(rows), len(rows[0])
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, v := range row {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g
}

func must(t *testing.T) func(*image.Gray, error) *image.Gray {
	return func(g *image.Gray, err error) *image.Gray {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
}

func TestGrayscale(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(10, 10, 14, 12))
	rgba.Set(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rgba.Set(13, 11, color.RGBA{A: 255})

	g, err := Grayscale(rgba)
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v, want origin-anchored 4x2", g.Bounds())
	}
	if v := g.GrayAt(0, 0).Y; v != 255 {
		t.Errorf("white pixel = %d", v)
	}
	if v := g.GrayAt(3, 1).Y; v != 0 {
		t.Errorf("black pixel = %d", v)
	}
}

func TestContrast(t *testing.T) {
	src := grayFrom([][]uint8{{100, 200}})
	out := must(t)(Contrast(src, 2.0))
	// mean 150: 100 -> 50, 200 -> 250
	if got := out.GrayAt(0, 0).Y; got != 50 {
		t.Errorf("got %d, want 50", got)
	}
	if got := out.GrayAt(1, 0).Y; got != 250 {
		t.Errorf("got %d, want 250", got)
	}

	out = must(t)(Contrast(grayFrom([][]uint8{{0, 255}}), 3.0))
	if out.GrayAt(0, 0).Y != 0 || out.GrayAt(1, 0).Y != 255 {
		t.Errorf("expected clamping, got %v", out.Pix)
	}
}

func TestSharpenUniformIsStable(t *testing.T) {
	src := grayFrom([][]uint8{
		{90, 90, 90},
		{90, 90, 90},
		{90, 90, 90},
	})
	out := must(t)(Sharpen(src))
	if got := out.GrayAt(1, 1).Y; got != 90 {
		t.Errorf("uniform centre = %d, want 90", got)
	}

	spot := grayFrom([][]uint8{
		{100, 100, 100},
		{100, 120, 100},
		{100, 100, 100},
	})
	// (32*120 - 16*100) / 16 = 140
	if got := must(t)(Sharpen(spot)).GrayAt(1, 1).Y; got != 140 {
		t.Errorf("sharpened centre = %d, want 140", got)
	}
}

func TestMedianRemovesSpeck(t *testing.T) {
	src := grayFrom([][]uint8{
		{255, 255, 255, 255},
		{255, 0, 255, 255},
		{255, 255, 255, 255},
		{255, 255, 255, 255},
	})
	out := must(t)(Median(src))
	if got := out.GrayAt(1, 1).Y; got != 255 {
		t.Errorf("speck survived denoise: %d", got)
	}
	if &out.Pix[0] == &src.Pix[0] {
		t.Error("Median must not alias its input")
	}
	if src.GrayAt(1, 1).Y != 0 {
		t.Error("input was modified")
	}
}

func TestBinarize(t *testing.T) {
	tests := []struct {
		name string
		in   [][]uint8
		want []uint8
	}{
		{"full range", [][]uint8{{0, 127, 128, 255}}, []uint8{0, 0, 255, 255}},
		{"faded scan", [][]uint8{{150, 170, 175, 200}}, []uint8{0, 0, 255, 255}},
		{"uniform", [][]uint8{{42, 42}}, []uint8{255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := must(t)(Binarize(grayFrom(tt.in)))
			for i, want := range tt.want {
				if got := out.GrayAt(i, 0).Y; got != want {
					t.Errorf("pixel %d: got %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestPreprocessDisabledStepsAreNoOps(t *testing.T) {
	src := grayFrom([][]uint8{
		{10, 20, 30},
		{40, 50, 60},
		{70, 80, 90},
	})
	out := must(t)(Preprocess(src, Options{Contrast: 1.0}))
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Errorf("expected unchanged pixels, got %v", out.Pix)
	}

	out = must(t)(Preprocess(src, Options{Binarize: true}))
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("binarized output has grey value %d", v)
		}
	}
}

func TestPreprocessChain(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			rgba.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	rgba.Set(2, 2, color.RGBA{A: 255})

	tests := []struct {
		name string
		opts Options
		want uint8 // centre pixel
	}{
		{"grayscale only", Options{}, 0},
		{"denoise removes speck", Options{Denoise: true}, 200},
		{"full chain", Options{Contrast: 1.5, Sharpen: true, Denoise: true, Binarize: true}, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := must(t)(Preprocess(rgba, tt.opts))
			if out.Bounds() != image.Rect(0, 0, 5, 5) {
				t.Fatalf("bounds = %v", out.Bounds())
			}
			if got := out.GrayAt(2, 2).Y; got != tt.want {
				t.Errorf("centre = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 10))
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 10 {
		t.Errorf("decoded %dx%d", cfg.Width, cfg.Height)
	}
}
