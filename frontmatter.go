package mdhtml

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Meta holds decoded front matter.
type Meta map[string]any

type frontMatterFormat uint8

const (
	frontMatterYAML frontMatterFormat = iota
	frontMatterTOML
	frontMatterJSON
)

func (f frontMatterFormat) String() string {
	switch f {
	case frontMatterTOML:
		return "toml"
	case frontMatterJSON:
		return "json"
	default:
		return "yaml"
	}
}

// frontMatter is a metadata block found at the very start of a document.
type frontMatter struct {
	format frontMatterFormat
	raw    []byte
}

// splitFrontMatter separates a leading front matter block from the body.
// Only the first line of the document may open one, the line after the
// delimiter must look like metadata, and an unclosed block is left as body.
func splitFrontMatter(src []byte) (*frontMatter, []byte) {
	src = trimBOM(src)
	openLine, next := nextLine(src, 0)
	format, delim, ok := openingFrontMatterDelimiter(openLine)
	if !ok || next >= len(src) {
		return nil, src
	}
	second, _ := nextLine(src, next)
	if !frontMatterMetadataLikely(second) {
		return nil, src
	}
	for idx := next; idx < len(src); {
		line, lineNext := nextLine(src, idx)
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return &frontMatter{format: format, raw: src[next:idx]}, src[lineNext:]
		}
		idx = lineNext
	}
	return nil, src
}

// decode parses the block according to its delimiter. The ";;;" form holds
// JSON, which the YAML decoder accepts.
func (fm *frontMatter) decode() (Meta, error) {
	meta := Meta{}
	var err error
	switch fm.format {
	case frontMatterTOML:
		err = toml.Unmarshal(fm.raw, &meta)
	default:
		if len(bytes.TrimSpace(fm.raw)) == 0 {
			return meta, nil
		}
		err = yaml.Unmarshal(fm.raw, &meta)
	}
	if err != nil {
		return nil, fmt.Errorf("front matter (%s): %w", fm.format, err)
	}
	return meta, nil
}

// nextLine returns the line starting at start without its line ending, and
// the offset of the following line.
func nextLine(src []byte, start int) ([]byte, int) {
	if start >= len(src) {
		return nil, len(src)
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src)
	}
	end := start + i
	return trimCR(src[start:end]), end + 1
}

func openingFrontMatterDelimiter(line []byte) (frontMatterFormat, []byte, bool) {
	trimmed := bytes.TrimSpace(line)
	switch {
	case bytes.Equal(trimmed, []byte("---")):
		return frontMatterYAML, []byte("---"), true
	case bytes.Equal(trimmed, []byte("+++")):
		return frontMatterTOML, []byte("+++"), true
	case bytes.Equal(trimmed, []byte(";;;")):
		return frontMatterJSON, []byte(";;;"), true
	default:
		return 0, nil, false
	}
}

func frontMatterMetadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return true
	}
	return bytes.Contains(trimmed, []byte(":")) || bytes.Contains(trimmed, []byte("="))
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
