package usecase

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Our New Studio", "our-new-studio"},
		{"punctuation collapses", "Kitchens, Baths & More!", "kitchens-baths-more"},
		{"leading and trailing junk", "  --Hello World--  ", "hello-world"},
		{"already a slug", "minimal-living", "minimal-living"},
		{"digits survive", "Top 10 Trends 2026", "top-10-trends-2026"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.title); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Run("basic formatting", func(t *testing.T) {
		html, err := RenderMarkdown("# Heading\n\nSome **bold** text.")
		if err != nil {
			t.Fatalf("RenderMarkdown() error = %v", err)
		}
		if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
			t.Errorf("rendered HTML missing expected tags: %q", html)
		}
	})

	t.Run("tables from GFM", func(t *testing.T) {
		html, err := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
		if err != nil {
			t.Fatalf("RenderMarkdown() error = %v", err)
		}
		if !strings.Contains(html, "<table>") {
			t.Errorf("rendered HTML has no table: %q", html)
		}
	})

	t.Run("script tags stripped", func(t *testing.T) {
		html, err := RenderMarkdown("hello <script>alert(1)</script> world")
		if err != nil {
			t.Fatalf("RenderMarkdown() error = %v", err)
		}
		if strings.Contains(html, "<script") || strings.Contains(html, "alert(1)") {
			t.Errorf("sanitizer let script content through: %q", html)
		}
		if !strings.Contains(html, "hello") || !strings.Contains(html, "world") {
			t.Errorf("sanitizer dropped surrounding text: %q", html)
		}
	})

	t.Run("event handlers stripped", func(t *testing.T) {
		html, err := RenderMarkdown(`<img src="x.jpg" onerror="alert(1)">`)
		if err != nil {
			t.Fatalf("RenderMarkdown() error = %v", err)
		}
		if strings.Contains(html, "onerror") {
			t.Errorf("sanitizer kept an event handler: %q", html)
		}
	})

	t.Run("links survive", func(t *testing.T) {
		html, err := RenderMarkdown("[portfolio](https://example.com/work)")
		if err != nil {
			t.Fatalf("RenderMarkdown() error = %v", err)
		}
		if !strings.Contains(html, `href="https://example.com/work"`) {
			t.Errorf("rendered HTML lost the link: %q", html)
		}
	})
}
