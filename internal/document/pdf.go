package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/brogergvhs/mangapdf/internal/ui"
)

// pixels at 96 dpi to PDF points
const pxToPt = 72.0 / 96.0

// PDF writes one page per image, each page sized to its image.
type PDF struct {
	log *ui.Logger
}

func NewPDF(log *ui.Logger) *PDF {
	if log == nil {
		log = ui.NopLogger()
	}

	return &PDF{log: log}
}

func (p *PDF) Ext() string { return "pdf" }

func (p *PDF) Assemble(ctx context.Context, paths []string, out string) (Document, error) {
	pages, err := LoadPages(ctx, paths, p.log)
	if err != nil {
		return Document{}, err
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "JPG"}

	for i, page := range pages {
		w := float64(page.Width) * pxToPt
		h := float64(page.Height) * pxToPt
		name := fmt.Sprintf("page-%04d", i+1)

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.JPEG))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if pdf.Err() {
			return Document{}, fmt.Errorf("pdf page %d (%s): %w", i+1, page.Source, pdf.Error())
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Document{}, fmt.Errorf("pdf: %w", err)
	}

	if err := pdf.OutputFileAndClose(out); err != nil {
		return Document{}, fmt.Errorf("pdf: %w", err)
	}

	p.log.Debugf("wrote %s (%d pages)", out, len(pages))

	return Document{Path: out, Pages: len(pages), Sources: sources(pages)}, nil
}
