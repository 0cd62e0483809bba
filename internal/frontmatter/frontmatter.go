package frontmatter

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the front matter flavor of a content file.
//
// Hugo accepts YAML (`---`) and TOML (`+++`) delimited front matter; both
// occur in real blog repositories, so both are recognized here.
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Style captures formatting details needed for stable rewriting.
//
// It intentionally focuses on newline shape and does not attempt to preserve
// original YAML/TOML formatting.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Split separates front matter from the Markdown body.
//
// If the document does not start with a front matter delimiter, format is
// FormatNone and body is the full input.
func Split(content []byte) (meta []byte, body []byte, format Format, style Style, err error) {
	style = detectStyle(content)

	for _, cand := range []struct {
		delim  string
		format Format
	}{
		{"---", FormatYAML},
		{"+++", FormatTOML},
	} {
		meta, body, ok, splitErr := splitDelimited(content, cand.delim, style.Newline)
		if splitErr != nil {
			return nil, nil, FormatNone, style, splitErr
		}
		if ok {
			return meta, body, cand.format, style, nil
		}
	}

	return nil, content, FormatNone, style, nil
}

func splitDelimited(content []byte, delim, nl string) (meta []byte, body []byte, ok bool, err error) {
	open := []byte(delim + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, nil, false, nil
	}

	metaStart := len(open)
	closeLine := []byte(delim + nl)
	if bytes.HasPrefix(content[metaStart:], closeLine) {
		bodyStart := metaStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + delim + nl)
	idx := bytes.Index(content[metaStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	metaEnd := metaStart + idx + len(nl)
	bodyStart := metaStart + idx + len(closeSeq)
	return content[metaStart:metaEnd], content[bodyStart:], true, nil
}

// Join reassembles a document from raw front matter and body.
//
// If format is FormatNone, Join returns body as-is. Otherwise it emits the
// matching delimiters using the newline style captured in Style.
func Join(meta []byte, body []byte, format Format, style Style) []byte {
	if format == FormatNone {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := "---"
	if format == FormatTOML {
		delim = "+++"
	}

	open := []byte(delim + nl)
	closing := []byte(delim + nl)

	out := make([]byte, 0, len(open)+len(meta)+len(closing)+len(body))
	out = append(out, open...)
	out = append(out, meta...)
	out = append(out, closing...)
	out = append(out, body...)
	return out
}

// Parse parses raw front matter (without delimiters) into a map.
func Parse(meta []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatTOML:
		return parseTOML(meta)
	default:
		return ParseYAML(meta)
	}
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func parseTOML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := toml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
