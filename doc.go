// Package mdhtml renders a Markdown document tree to an HTML fragment.
//
// A front end turns Markdown into a flat stream of events (Start, End, Text,
// ...). NewContent groups that stream lazily into nodes: a Block for every
// Start/End pair and an Item for every other event. IntoHTML walks the nodes
// once and appends paired tags and literal text to a caller-owned buffer.
//
// Core properties:
//   - Paragraphs render as <p>, headers as <hN>, each closed and newline terminated
//   - Other block kinds render only their content
//   - Text is appended verbatim, without escaping
//   - A non-text leaf stops the render with ErrMalformedTree
//
// Example:
//
//	var buf strings.Builder
//	content := mdhtml.NewContent(mdhtml.Events(
//		mdhtml.Start(mdhtml.Header(2)),
//		mdhtml.Text("Title"),
//		mdhtml.End(mdhtml.Header(2)),
//	))
//	if err := mdhtml.IntoHTML(content, &buf); err != nil {
//		log.Fatal(err)
//	}
//	// buf.String() == "<h2>Title</h2>\n"
//
// Render and RenderString bundle a small block-level Markdown parser
// (ParseEvents) with the renderer.
package mdhtml
