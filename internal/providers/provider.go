package providers

import (
	"net/url"
	"strings"
)

// SiteAdapter turns one host's markup into link lists. Implementations are
// stateless and must not perform I/O.
type SiteAdapter interface {
	// ExtractChapterLinks returns chapter hrefs in document order, as written
	// in the markup. Duplicates and relative links are left to the caller.
	ExtractChapterLinks(html []byte) []string
	// ExtractImageLinks returns absolute http(s) page-image URLs in page order.
	ExtractImageLinks(html []byte) []string
}

// Site is one entry of the registry table.
type Site struct {
	Token   string // matched against the URL host
	Name    string
	Adapter SiteAdapter
}

// Registry maps chapter URLs to adapters. It is read-only once built and safe
// to share between pipelines.
type Registry struct {
	sites []Site
}

func NewRegistry(sites ...Site) *Registry {
	cp := make([]Site, len(sites))
	copy(cp, sites)

	return &Registry{sites: cp}
}

// Resolve picks the first site whose token occurs in the URL host.
func (r *Registry) Resolve(rawURL string) (Site, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Site{}, false
	}

	host := strings.ToLower(u.Hostname())
	for _, s := range r.sites {
		if strings.Contains(host, s.Token) {
			return s, true
		}
	}

	return Site{}, false
}

func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)

	return out
}
