package providers

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ImageSelectors is tried in order; looser selectors come last.
var ImageSelectors = []string{
	"img.chapter-img",
	"img.img-responsive",
	"img.wp-manga-chapter-img",
	"img",
}

// lazy loaders keep the real page in one of these when src is a placeholder
var imageAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// Default returns the table of supported hosts.
func Default() *Registry {
	return NewRegistry(
		Site{Token: "mangadex", Name: "MangaDex", Adapter: NewSelectorAdapter("a[href*='/chapter/']", ImageSelectors...)},
		Site{Token: "mangasee", Name: "MangaSee", Adapter: NewSelectorAdapter("div.chapter-list a", ImageSelectors...)},
		Site{Token: "asura", Name: "Asura Scans", Adapter: NewSelectorAdapter("ul.main li a", ImageSelectors...)},
		Site{Token: "reaper", Name: "Reaper Scans", Adapter: NewSelectorAdapter("div.wp-manga-chapter a", ImageSelectors...)},
		Site{Token: "manhwaread", Name: "Manhwaread", Adapter: NewSelectorAdapter("ul.chapter-list li a", ImageSelectors...)},
	)
}

// SelectorAdapter is a SiteAdapter driven by CSS selectors.
type SelectorAdapter struct {
	chapterSelector string
	imageSelectors  []string
}

func NewSelectorAdapter(chapterSelector string, imageSelectors ...string) *SelectorAdapter {
	return &SelectorAdapter{
		chapterSelector: chapterSelector,
		imageSelectors:  append([]string(nil), imageSelectors...),
	}
}

func (a *SelectorAdapter) ExtractChapterLinks(html []byte) []string {
	doc, err := parseHTML(html)
	if err != nil {
		return nil
	}

	var out []string
	doc.Find(a.chapterSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		out = append(out, href)
	})

	return out
}

func (a *SelectorAdapter) ExtractImageLinks(html []byte) []string {
	doc, err := parseHTML(html)
	if err != nil {
		return nil
	}

	for _, sel := range a.imageSelectors {
		if images := collectImages(doc.Find(sel)); len(images) > 0 {
			return images
		}
	}

	return nil
}

func collectImages(sel *goquery.Selection) []string {
	var out []string
	seen := map[string]bool{}

	sel.Each(func(_ int, img *goquery.Selection) {
		u := imageURL(img)
		if u == "" || seen[u] {
			return
		}

		seen[u] = true
		out = append(out, u)
	})

	return out
}

// imageURL returns the first absolute http(s) candidate of an img element.
func imageURL(img *goquery.Selection) string {
	for _, attr := range imageAttrs {
		v, ok := img.Attr(attr)
		if !ok {
			continue
		}

		v = strings.TrimSpace(v)
		if IsAbsoluteHTTP(v) {
			return v
		}
	}

	return ""
}

// IsAbsoluteHTTP reports whether s starts with an http or https scheme.
func IsAbsoluteHTTP(s string) bool {
	ls := strings.ToLower(s)

	return strings.HasPrefix(ls, "http://") || strings.HasPrefix(ls, "https://")
}

// parseHTML decodes legacy charsets announced in the markup before parsing.
func parseHTML(html []byte) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(html), "")
	if err != nil {
		return goquery.NewDocumentFromReader(bytes.NewReader(html))
	}

	return goquery.NewDocumentFromReader(r)
}
