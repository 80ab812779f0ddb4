package scraper

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/providers"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, target string, _ ...fetch.Option) ([]byte, error) {
	body, ok := m[target]
	if !ok {
		return nil, &fetch.Error{URL: target, Attempts: 3, Err: fmt.Errorf("%w: 404", fetch.ErrStatus)}
	}

	return []byte(body), nil
}

// lineAdapter treats every line of the markup as one link.
type lineAdapter struct{}

func (lineAdapter) ExtractChapterLinks(html []byte) []string { return lines(html) }
func (lineAdapter) ExtractImageLinks(html []byte) []string   { return lines(html) }

func lines(b []byte) []string {
	var out []string
	for _, l := range strings.Split(string(b), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetChaptersDeduplicatesInOrder(t *testing.T) {
	f := mapFetcher{
		"https://site/ch-1": "https://site/a\nhttps://site/b\nhttps://site/a\nhttps://site/c",
	}

	got, err := New(f, lineAdapter{}, nil).GetChapters(context.Background(), "https://site/ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://site/a", "https://site/b", "https://site/c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetChaptersResolvesRelativeLinks(t *testing.T) {
	f := mapFetcher{
		"https://site/series/ch-1": "/series/ch-1\nch-2\nhttps://site/series/ch-2\nmailto:x@y",
	}

	got, err := New(f, lineAdapter{}, nil).GetChapters(context.Background(), "https://site/series/ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://site/series/ch-1", "https://site/series/ch-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetChaptersFailures(t *testing.T) {
	tests := []struct {
		name      string
		fetcher   mapFetcher
		wantFetch bool
	}{
		{"fetch fails", mapFetcher{}, true},
		{"no links", mapFetcher{"https://site/ch-1": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.fetcher, lineAdapter{}, nil).GetChapters(context.Background(), "https://site/ch-1")
			if len(got) != 0 {
				t.Errorf("expected empty list, got %v", got)
			}
			if !errors.Is(err, ErrNoChapters) {
				t.Fatalf("expected ErrNoChapters, got %v", err)
			}

			var fe *fetch.Error
			if errors.As(err, &fe) != tt.wantFetch {
				t.Errorf("fetch error in chain = %v, want %v", !tt.wantFetch, tt.wantFetch)
			}
		})
	}
}

func TestGetImagesWithSiteAdapter(t *testing.T) {
	f := mapFetcher{
		"https://site/ch-1": `<html><body>
			<img src="https://site/logo.png">
			<img class="chapter-img" src="https://cdn/1.jpg">
			<img class="chapter-img" src="/rel/2.jpg">
			<img class="chapter-img" src="https://cdn/3.jpg">
		</body></html>`,
	}

	a := providers.NewSelectorAdapter("a", providers.ImageSelectors...)

	got, err := New(f, a, nil).GetImages(context.Background(), "https://site/ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://cdn/1.jpg", "https://cdn/3.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetImagesEmpty(t *testing.T) {
	f := mapFetcher{"https://site/ch-2": "\n\n"}

	_, err := New(f, lineAdapter{}, nil).GetImages(context.Background(), "https://site/ch-2")
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}

	_, err = New(f, lineAdapter{}, nil).GetImages(context.Background(), "https://site/missing")
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages for failed fetch, got %v", err)
	}
}
