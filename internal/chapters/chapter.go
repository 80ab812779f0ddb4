package chapters

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// PageNameWidth is the zero-padded width of page file stems. Past 999 pages
// the stems simply grow ("1000.jpg"); callers keep their own ordered path
// list, so ordering survives, but lexical directory listings no longer match
// page order.
const PageNameWidth = 3

// FolderPrefix marks per-chapter working folders inside a base directory.
const FolderPrefix = "chapter_"

// Job is the unit of work for one chapter. Index is 1-based in discovery order.
type Job struct {
	Index int
	URL   string
	Total int
}

func (j Job) FolderName() string {
	return fmt.Sprintf("%s%d", FolderPrefix, j.Index)
}

func (j Job) Folder(base string) string {
	return filepath.Join(base, j.FolderName())
}

// DocumentName is "Chapter_<n>.<ext>".
func (j Job) DocumentName(ext string) string {
	return fmt.Sprintf("Chapter_%d.%s", j.Index, ext)
}

func (j Job) DocumentPath(base, ext string) string {
	return filepath.Join(base, j.DocumentName(ext))
}

// PageName is the file name of the n-th (1-based) page.
func PageName(n int) string {
	return fmt.Sprintf("%0*d.jpg", PageNameWidth, n)
}

var (
	chapterSuffix = regexp.MustCompile(`(?i)[-_.]?(chapter|chap|ch|episode|ep)[-_.]?\d.*$`)
	numeric       = regexp.MustCompile(`^[\d.]+$`)
	slugUnsafe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// path segments that name a site section rather than a series
var genericSegments = map[string]bool{
	"chapter": true, "chapters": true, "comics": true, "manga": true,
	"manhwa": true, "read-online": true, "series": true, "title": true,
}

// SeriesSlug derives a folder name for a series from one of its chapter URLs:
// the last path segment that is neither a chapter marker nor a site section,
// lowercased and reduced to [a-z0-9-]. It falls back to the host.
func SeriesSlug(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "series"
	}

	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	for i := len(segs) - 1; i >= 0; i-- {
		seg := strings.TrimSuffix(segs[i], filepath.Ext(segs[i]))
		seg = chapterSuffix.ReplaceAllString(seg, "")

		slug := slugify(seg)
		if slug == "" || numeric.MatchString(slug) || genericSegments[slug] {
			continue
		}

		return slug
	}

	if slug := slugify(u.Hostname()); slug != "" {
		return slug
	}

	return "series"
}

func slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
