package providers

import (
	"reflect"
	"testing"
)

func TestRegistryResolve(t *testing.T) {
	reg := Default()

	tests := []struct {
		url      string
		wantName string
		wantOK   bool
	}{
		{"https://mangadex.org/chapter/abc", "MangaDex", true},
		{"https://mangasee123.com/read-online/x-chapter-1.html", "MangaSee", true},
		{"https://asuracomic.net/series/foo/chapter/1", "Asura Scans", true},
		{"https://reaperscans.com/comics/foo/chapters/1", "Reaper Scans", true},
		{"https://manhwaread.com/manhwa/foo/chapter-1/", "Manhwaread", true},
		{"https://WWW.MANHWAREAD.COM/manhwa/foo/chapter-1/", "Manhwaread", true},
		{"https://example.com/mangadex/chapter/1", "", false},
		{"not a url", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			site, ok := reg.Resolve(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if site.Name != tt.wantName {
				t.Errorf("name = %q, want %q", site.Name, tt.wantName)
			}
			if ok && site.Adapter == nil {
				t.Errorf("resolved site without adapter")
			}
		})
	}
}

func TestExtractChapterLinks(t *testing.T) {
	a := NewSelectorAdapter("ul.chapter-list li a", ImageSelectors...)

	html := `<html><body>
		<a href="https://site/other">nav</a>
		<ul class="chapter-list">
			<li><a href="https://site/ch-1">1</a></li>
			<li><a href="/ch-2">2</a></li>
			<li><a href="https://site/ch-1">1 again</a></li>
			<li><a href="#">anchor</a></li>
			<li><a>no href</a></li>
		</ul>
	</body></html>`

	got := a.ExtractChapterLinks([]byte(html))
	want := []string{"https://site/ch-1", "/ch-2", "https://site/ch-1"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksStrictSelectorWins(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	html := `<html><body>
		<img src="https://site/logo.png">
		<img class="wp-manga-chapter-img" src="https://cdn/1.jpg">
		<img class="wp-manga-chapter-img" src="https://cdn/2.jpg">
		<img src="https://site/ad.gif">
	</body></html>`

	got := a.ExtractImageLinks([]byte(html))
	want := []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksFallsBackToAnyImage(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	html := `<html><body>
		<img src="https://cdn/1.jpg">
		<img src="https://cdn/2.jpg">
	</body></html>`

	got := a.ExtractImageLinks([]byte(html))
	want := []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksDropsNonHTTP(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	html := `<html><body>
		<img src="http://x/1.jpg">
		<img src="/rel/2.jpg">
		<img src="ftp://y/3.jpg">
	</body></html>`

	got := a.ExtractImageLinks([]byte(html))
	want := []string{"http://x/1.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksStrictSelectorWithOnlyRelativeFallsThrough(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	html := `<html><body>
		<img class="chapter-img" src="/rel/1.jpg">
		<img src="https://cdn/page.jpg">
	</body></html>`

	got := a.ExtractImageLinks([]byte(html))
	want := []string{"https://cdn/page.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksLazyAttributes(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	html := `<html><body>
		<img class="chapter-img" src="data:image/gif;base64,R0lGOD" data-src=" https://cdn/1.jpg ">
		<img class="chapter-img" src="https://cdn/2.jpg">
		<img class="chapter-img" src="https://cdn/2.jpg">
	</body></html>`

	got := a.ExtractImageLinks([]byte(html))
	want := []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractImageLinksNoImages(t *testing.T) {
	a := NewSelectorAdapter("a", ImageSelectors...)

	if got := a.ExtractImageLinks([]byte(`<html><body><p>nothing</p></body></html>`)); len(got) != 0 {
		t.Errorf("expected no images, got %v", got)
	}
}

func TestParseHTMLLegacyCharset(t *testing.T) {
	a := NewSelectorAdapter("ul.chapter-list a", ImageSelectors...)

	// "Capítulo" in ISO-8859-1, announced through a meta tag
	html := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body><ul class=\"chapter-list\"><a href=\"https://site/cap\xedtulo-1\">x</a></ul></body></html>")

	got := a.ExtractChapterLinks(html)
	want := []string{"https://site/capítulo-1"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
