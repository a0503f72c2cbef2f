package mdhtml

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
)

func BenchmarkRenderBlocks(b *testing.B) {
	data, err := os.ReadFile("testdata/blocks.md")
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	b.ReportAllocs()
	reader := bytes.NewReader(data)
	for i := 0; i < b.N; i++ {
		reader.Reset(data)
		_ = Render(RenderRequest{
			Reader: reader,
			Writer: io.Discard,
		})
	}
}

func BenchmarkIntoHTML(b *testing.B) {
	var src strings.Builder
	for i := 0; i < 200; i++ {
		src.WriteString("## Heading " + strconv.Itoa(i) + "\n\nParagraph text with a few words.\n\n> quoted\n\n")
	}
	events, _, err := ParseEvents([]byte(src.String()))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	var buf strings.Builder
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := IntoHTML(NewContent(Events(events...)), &buf); err != nil {
			b.Fatalf("IntoHTML: %v", err)
		}
	}
}

func BenchmarkIntoHTMLDeep(b *testing.B) {
	for _, depth := range []int{16, 128, 512} {
		b.Run("depth"+strconv.Itoa(depth), func(b *testing.B) {
			b.ReportAllocs()
			var buf strings.Builder
			for i := 0; i < b.N; i++ {
				buf.Reset()
				if err := IntoHTML(Nodes(nestedParagraphs(depth)), &buf, WithMaxDepth(0)); err != nil {
					b.Fatalf("IntoHTML: %v", err)
				}
			}
		})
	}
}
