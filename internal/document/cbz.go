package document

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/mangapdf/internal/chapters"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

// CBZ stores the converted pages as 001.jpg, 002.jpg, ... in a zip archive.
type CBZ struct {
	log *ui.Logger
}

func NewCBZ(log *ui.Logger) *CBZ {
	if log == nil {
		log = ui.NopLogger()
	}

	return &CBZ{log: log}
}

func (c *CBZ) Ext() string { return "cbz" }

func (c *CBZ) Assemble(ctx context.Context, paths []string, out string) (Document, error) {
	pages, err := LoadPages(ctx, paths, c.log)
	if err != nil {
		return Document{}, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Document{}, fmt.Errorf("cbz: %w", err)
	}

	if err := writeCBZ(pages, out); err != nil {
		_ = os.Remove(out)
		return Document{}, err
	}

	c.log.Debugf("wrote %s (%d pages)", out, len(pages))

	return Document{Path: out, Pages: len(pages), Sources: sources(pages)}, nil
}

func writeCBZ(pages []Page, out string) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("cbz: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cbz: closing %s: %w", out, cerr)
		}
	}()

	z := zip.NewWriter(f)

	for i, p := range pages {
		// JPEG data does not deflate
		w, err := z.CreateHeader(&zip.FileHeader{
			Name:   chapters.PageName(i + 1),
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("cbz: %w", err)
		}

		if _, err := w.Write(p.JPEG); err != nil {
			return fmt.Errorf("cbz: %w", err)
		}
	}

	if err := z.Close(); err != nil {
		return fmt.Errorf("cbz: %w", err)
	}

	return nil
}
