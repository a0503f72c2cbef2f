package mdhtml

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Regenerate with: go run ./cmd/gen-golden
func TestGoldenHTML(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no markdown files under testdata")
	}
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".md")
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			want, err := os.ReadFile(filepath.Join("testdata", name+".html.golden"))
			if err != nil {
				t.Fatalf("read golden: %v", err)
			}
			var out bytes.Buffer
			if err := Render(RenderRequest{Reader: bytes.NewReader(src), Writer: &out}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := out.String(); got != string(want) {
				dmp := diffmatchpatch.New()
				diffs := dmp.DiffMain(string(want), got, true)
				t.Fatalf("golden mismatch for %s:\n%s", path, dmp.DiffPrettyText(diffs))
			}
			if err := checkBalanced(out.String()); err != nil {
				t.Fatalf("unbalanced output: %v", err)
			}
		})
	}
}
