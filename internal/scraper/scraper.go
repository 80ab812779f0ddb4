// Package scraper discovers a series' chapter list and each chapter's page
// images by fetching markup and handing it to a site adapter.
//
// Discovery reads the first chapter's page only. Every supported host prints
// the whole table of contents there; a host that paginates its chapter list
// would need a different discovery strategy.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/providers"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

var (
	ErrNoChapters = errors.New("no chapters found")
	ErrNoImages   = errors.New("no images found")
)

type Scraper struct {
	fetcher fetch.Fetcher
	adapter providers.SiteAdapter
	log     *ui.Logger
}

func New(f fetch.Fetcher, a providers.SiteAdapter, log *ui.Logger) *Scraper {
	if log == nil {
		log = ui.NopLogger()
	}

	return &Scraper{fetcher: f, adapter: a, log: log}
}

// GetChapters returns the deduplicated chapter URLs linked from firstURL, in
// first-seen order. Any failure, including an empty result, is ErrNoChapters.
func (s *Scraper) GetChapters(ctx context.Context, firstURL string) ([]string, error) {
	html, err := s.fetcher.Fetch(ctx, firstURL, fetch.WithAccept(fetch.AcceptHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoChapters, err)
	}

	raw := s.adapter.ExtractChapterLinks(html)
	s.log.Debugf("%d raw chapter links on %s", len(raw), firstURL)

	resolved := make([]string, 0, len(raw))
	for _, href := range raw {
		u := resolveURL(firstURL, href)
		if !providers.IsAbsoluteHTTP(u) {
			continue
		}
		resolved = append(resolved, u)
	}

	out := Unique(resolved)
	if len(out) == 0 {
		return nil, ErrNoChapters
	}

	return out, nil
}

// GetImages returns the page-image URLs of one chapter in page order.
func (s *Scraper) GetImages(ctx context.Context, chapterURL string) ([]string, error) {
	html, err := s.fetcher.Fetch(ctx, chapterURL, fetch.WithAccept(fetch.AcceptHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImages, err)
	}

	images := s.adapter.ExtractImageLinks(html)
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	return images, nil
}

// Unique drops repeated entries, keeping the first occurrence of each.
func Unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
