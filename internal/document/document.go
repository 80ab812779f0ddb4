// Package document turns a chapter's downloaded page images into a single
// paginated file.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder registration
	"image/jpeg"
	_ "image/png" // decoder registration
	"os"

	_ "golang.org/x/image/bmp"  // decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/brogergvhs/mangapdf/internal/ui"
)

// ErrNoUsablePages is returned when none of the inputs decode as an image.
var ErrNoUsablePages = errors.New("no usable pages")

// MaxPageSide bounds the longest side of a page in pixels. Taller strips are
// scaled down so the PDF page stays within the 14400pt viewer limit.
const MaxPageSide = 19200

const jpegQuality = 90

// Document is a produced chapter file.
type Document struct {
	Path    string
	Pages   int
	Sources []string // input files, one per page, in page order
}

// Assembler writes one document from ordered page images.
type Assembler interface {
	// Ext is the file extension without the dot.
	Ext() string
	Assemble(ctx context.Context, paths []string, out string) (Document, error)
}

// New returns the assembler for a format name ("pdf" or "cbz").
func New(format string, log *ui.Logger) (Assembler, error) {
	switch format {
	case "", "pdf":
		return NewPDF(log), nil
	case "cbz":
		return NewCBZ(log), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want pdf or cbz)", format)
	}
}

// Page is one decoded input, re-encoded as a baseline RGB JPEG.
type Page struct {
	Source string
	JPEG   []byte
	Width  int
	Height int
}

// LoadPages decodes every path in order, converting it to RGB. Inputs that
// cannot be read or decoded are logged and skipped.
func LoadPages(ctx context.Context, paths []string, log *ui.Logger) ([]Page, error) {
	if log == nil {
		log = ui.NopLogger()
	}

	pages := make([]Page, 0, len(paths))

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := loadPage(p)
		if err != nil {
			log.Warnf("page %s skipped (decode): %v", p, err)
			continue
		}

		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, ErrNoUsablePages
	}

	return pages, nil
}

func loadPage(path string) (Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Page{}, err
	}

	rgb := toRGB(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Page{}, err
	}

	b := rgb.Bounds()

	return Page{Source: path, JPEG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// toRGB flattens transparency onto white and scales oversized pages down.
func toRGB(src image.Image) *image.RGBA {
	sb := src.Bounds()
	w, h := fitWithin(sb.Dx(), sb.Dy(), MaxPageSide)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	}

	return dst
}

func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}

	if w >= h {
		return limit, max(1, h*limit/w)
	}

	return max(1, w*limit/h), limit
}

func sources(pages []Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Source
	}

	return out
}
