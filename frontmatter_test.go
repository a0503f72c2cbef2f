package mdhtml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderOmitsFrontMatterAtDocumentStart(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		want     string
		wantMeta Meta
	}{
		{
			name:     "yaml",
			src:      "---\ntitle: Post\ndraft: true\n---\n\n# Hello\n\nBody.\n",
			want:     "<h1>Hello</h1>\n<p>Body.</p>\n",
			wantMeta: Meta{"title": "Post", "draft": true},
		},
		{
			name:     "toml",
			src:      "+++\ntitle = \"Post\"\n+++\n\n# Hello\n",
			want:     "<h1>Hello</h1>\n",
			wantMeta: Meta{"title": "Post"},
		},
		{
			name:     "json",
			src:      ";;;\n{\"title\": \"Post\"}\n;;;\n\n# Hello\n",
			want:     "<h1>Hello</h1>\n",
			wantMeta: Meta{"title": "Post"},
		},
		{
			name:     "byte order mark",
			src:      "\ufeff---\ntitle: Post\n---\nBody\n",
			want:     "<p>Body</p>\n",
			wantMeta: Meta{"title": "Post"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var meta Meta
			out, err := RenderString(tc.src, WithFrontMatter(func(m Meta) { meta = m }))
			if err != nil {
				t.Fatalf("RenderString: %v", err)
			}
			if out != tc.want {
				t.Fatalf("want %q got %q", tc.want, out)
			}
			if diff := cmp.Diff(tc.wantMeta, meta); diff != "" {
				t.Fatalf("front matter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderFrontMatterIsOnlyCheckedAtStart(t *testing.T) {
	t.Parallel()
	src := "# Intro\n\n+++\ntitle = \"Keep me\"\n+++\n\nTail\n"
	out, err := RenderString(src)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	for _, want := range []string{"<h1>Intro</h1>", "title = \"Keep me\"", "<p>Tail</p>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestRenderUnclosedFrontMatterIsNotStripped(t *testing.T) {
	t.Parallel()
	called := false
	out, err := RenderString("---\ntitle: Post\n\n# Hello\n", WithFrontMatter(func(Meta) { called = true }))
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if called {
		t.Fatalf("front matter callback called for unclosed block")
	}
	for _, want := range []string{"title: Post", "<h1>Hello</h1>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestRenderStartDelimiterWithoutMetadataIsNotStripped(t *testing.T) {
	t.Parallel()
	out, err := RenderString("---\n# Keep\n---\n\nTail\n")
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if want := "<h1>Keep</h1>\n<p>Tail</p>\n"; out != want {
		t.Fatalf("want %q got %q", want, out)
	}
}

func TestRenderInvalidFrontMatterFails(t *testing.T) {
	t.Parallel()
	if _, err := RenderString("+++\ntitle = = broken\n+++\nBody\n"); err == nil {
		t.Fatalf("expected front matter decode error")
	}
}
