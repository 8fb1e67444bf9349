package document

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// ImageSource is a document made of one image file per page.
type ImageSource struct {
	name    string
	files   []string
	scanDPI int
}

// OpenImageDir opens a directory of page images, ordered by the last number
// in each file name (page_2.png before page_10.png).
func OpenImageDir(dir string, opts Options) (*ImageSource, error) {
	files, err := listImages(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no page images in %s", ErrNotFound, dir)
	}
	return newImageSource(filepath.Base(dir), files, opts), nil
}

func newImageSource(name string, files []string, opts Options) *ImageSource {
	scanDPI := opts.ScanDPI
	if scanDPI <= 0 {
		scanDPI = 300
	}
	return &ImageSource{name: name, files: files, scanDPI: scanDPI}
}

// Name returns the directory or file name.
func (s *ImageSource) Name() string { return s.name }

// PageCount returns the number of page images.
func (s *ImageSource) PageCount() int { return len(s.files) }

// Render decodes the page image and resamples it from the scan resolution
// to dpi.
func (s *ImageSource) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	if err := checkPage(s, page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.files[page])
	if err != nil {
		return nil, fmt.Errorf("failed to open page image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image %s: %w", filepath.Base(s.files[page]), err)
	}
	if dpi <= 0 || dpi == s.scanDPI {
		return img, nil
	}

	b := img.Bounds()
	w := max(1, b.Dx()*dpi/s.scanDPI)
	h := max(1, b.Dy()*dpi/s.scanDPI)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, nil
}

var trailingNumber = regexp.MustCompile(`(\d+)\D*$`)

// listImages returns the image files in dir sorted by their trailing page
// number. Files without a number sort first, alphabetically.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sortByPageNumber(files)
	return files, nil
}

func sortByPageNumber(paths []string) {
	num := func(p string) (int, bool) {
		m := trailingNumber.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	sort.SliceStable(paths, func(i, j int) bool {
		ni, oki := num(paths[i])
		nj, okj := num(paths[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return okj
		}
		return paths[i] < paths[j]
	})
}
