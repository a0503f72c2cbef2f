package mdhtml

import (
	"fmt"
	"io"
	"strings"
)

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Options []RenderOption
}

// Render reads Markdown from Reader and writes the HTML fragment to Writer.
// Nothing is written when parsing or rendering fails.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("render: read: %w", err)
	}
	var buf strings.Builder
	if err := renderSource(src, &buf, req.Options); err != nil {
		return err
	}
	if _, err := io.WriteString(req.Writer, buf.String()); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

// RenderString renders Markdown source to an HTML fragment.
func RenderString(src string, opts ...RenderOption) (string, error) {
	var buf strings.Builder
	if err := renderSource([]byte(src), &buf, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderSource(src []byte, buf *strings.Builder, opts []RenderOption) error {
	events, meta, err := ParseEvents(src, opts...)
	if err != nil {
		return fmt.Errorf("render: parse: %w", err)
	}
	cfg := newRenderConfig(opts)
	if meta != nil && cfg.frontMatter != nil {
		cfg.frontMatter(meta)
	}
	if err := IntoHTML(NewContent(Events(events...)), buf, opts...); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
