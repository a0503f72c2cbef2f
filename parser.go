package mdhtml

import (
	"fmt"
	"strings"
)

// ParseEvents converts Markdown source into a flat event stream.
//
// The parser understands the block structure the renderer cares about:
// ATX and setext headings, paragraphs, fenced and indented code blocks and
// block quotes. Thematic breaks are dropped. Inline markup is kept as
// literal text, so the stream only ever holds Start, End and Text events.
// Leading front matter is removed and returned decoded.
//
// Block quotes nested deeper than the WithMaxDepth limit fail with
// ErrNestingTooDeep. Other options are ignored.
func ParseEvents(src []byte, opts ...RenderOption) ([]Event, Meta, error) {
	if err := ValidateInput(src); err != nil {
		return nil, nil, err
	}
	fm, body := splitFrontMatter(src)
	var meta Meta
	if fm != nil {
		var err error
		meta, err = fm.decode()
		if err != nil {
			return nil, nil, err
		}
	}
	p := &blockParser{maxDepth: newRenderConfig(opts).maxDepth}
	if err := p.parse(splitLines(string(body))); err != nil {
		return nil, nil, err
	}
	return p.events, meta, nil
}

type blockParser struct {
	events   []Event
	para     []string
	depth    int
	maxDepth int
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (p *blockParser) parse(lines []string) error {
	for i := 0; i < len(lines); {
		line := lines[i]
		if isBlank(line) {
			p.flushParagraph()
			i++
			continue
		}
		if len(p.para) > 0 {
			if level, ok := setextUnderline(line); ok {
				p.emitLeaf(Header(level), strings.Join(p.para, "\n"))
				p.para = p.para[:0]
				i++
				continue
			}
		}
		if indentWidth(line) >= 4 {
			// Indented lines continue an open paragraph.
			if len(p.para) > 0 {
				p.para = append(p.para, strings.TrimSpace(line))
				i++
				continue
			}
			i = p.indentedCode(lines, i)
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		if marker, info, ok := openingFence(trimmed); ok {
			p.flushParagraph()
			i = p.fencedCode(lines, i+1, marker, info)
			continue
		}
		if level, text, ok := atxHeading(trimmed); ok {
			p.flushParagraph()
			p.emitLeaf(Header(level), text)
			i++
			continue
		}
		if isThematicBreak(trimmed) {
			p.flushParagraph()
			i++
			continue
		}
		if strings.HasPrefix(trimmed, ">") {
			p.flushParagraph()
			next, err := p.blockQuote(lines, i)
			if err != nil {
				return err
			}
			i = next
			continue
		}
		p.para = append(p.para, strings.TrimSpace(line))
		i++
	}
	p.flushParagraph()
	return nil
}

func (p *blockParser) flushParagraph() {
	if len(p.para) == 0 {
		return
	}
	p.emitLeaf(Paragraph(), strings.Join(p.para, "\n"))
	p.para = p.para[:0]
}

// emitLeaf emits a block holding at most one text event.
func (p *blockParser) emitLeaf(tag Tag, text string) {
	p.events = append(p.events, Start(tag))
	if text != "" {
		p.events = append(p.events, Text(text))
	}
	p.events = append(p.events, End(tag))
}

func (p *blockParser) indentedCode(lines []string, i int) int {
	var code []string
	last := i
	for ; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) {
			code = append(code, stripIndent(line, 4))
			continue
		}
		if indentWidth(line) < 4 {
			break
		}
		code = append(code, stripIndent(line, 4))
		last = i
	}
	// Trailing blank lines belong to whatever follows.
	code = code[:len(code)-(i-1-last)]
	p.emitLeaf(CodeBlock(""), strings.Join(code, "\n")+"\n")
	return last + 1
}

func (p *blockParser) fencedCode(lines []string, i int, marker, info string) int {
	var b strings.Builder
	for ; i < len(lines); i++ {
		if isClosingFence(stripIndent(lines[i], 3), marker) {
			i++
			break
		}
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	p.emitLeaf(CodeBlock(info), b.String())
	return i
}

// blockQuote parses the quote starting at lines[i] and returns the index of
// the first line after it. Nested events are appended to p.events directly.
func (p *blockParser) blockQuote(lines []string, i int) (int, error) {
	if p.maxDepth > 0 && p.depth >= p.maxDepth {
		return 0, fmt.Errorf("%w: block quotes exceed limit %d", ErrNestingTooDeep, p.maxDepth)
	}
	var inner []string
	for ; i < len(lines); i++ {
		trimmed := stripIndent(lines[i], 3)
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		trimmed = trimmed[1:]
		if strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") {
			trimmed = trimmed[1:]
		}
		inner = append(inner, trimmed)
	}
	nested := &blockParser{
		events:   append(p.events, Start(BlockQuote())),
		depth:    p.depth + 1,
		maxDepth: p.maxDepth,
	}
	if err := nested.parse(inner); err != nil {
		return 0, err
	}
	p.events = append(nested.events, End(BlockQuote()))
	return i, nil
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// indentWidth measures leading whitespace in columns, with tab stops of 4.
func indentWidth(line string) int {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return w
		}
	}
	return w
}

// stripIndent removes up to n columns of leading whitespace.
func stripIndent(line string, n int) string {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return line[i:]
		}
		if w >= n {
			return line[i+1:]
		}
	}
	return ""
}

// atxHeading recognizes "# text" through "###### text". Seven or more
// hashes, or a hash run not followed by whitespace, is not a heading.
func atxHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(rest)
	// Drop an optional closing run of hashes.
	if stripped := strings.TrimRight(text, "#"); stripped != text {
		if stripped == "" {
			text = ""
		} else if last := stripped[len(stripped)-1]; last == ' ' || last == '\t' {
			text = strings.TrimSpace(stripped)
		}
	}
	return level, text, true
}

func setextUnderline(line string) (int, bool) {
	if indentWidth(line) >= 4 {
		return 0, false
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, false
	}
	switch {
	case strings.Trim(trimmed, "=") == "":
		return 1, true
	case strings.Trim(trimmed, "-") == "":
		return 2, true
	}
	return 0, false
}

func isThematicBreak(line string) bool {
	var marker byte
	count := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case ' ', '\t':
			continue
		case '*', '-', '_':
			if marker != 0 && c != marker {
				return false
			}
			marker = c
			count++
		default:
			return false
		}
	}
	return count >= 3
}

func openingFence(line string) (string, string, bool) {
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return "", "", false
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	info := strings.TrimSpace(line[n:])
	if line[0] == '`' && strings.Contains(info, "`") {
		return "", "", false
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		info = fields[0]
	}
	return line[:n], info, true
}

func isClosingFence(line, marker string) bool {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasPrefix(trimmed, marker) {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}
