package render

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists every supported format in display order.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// ValidateFormat returns INVALID_INPUT for an unknown format name.
func ValidateFormat(format string) error {
	if slices.Contains(Formats, format) {
		return nil
	}
	return errs.New(errs.ErrCodeInvalidInput, "unsupported format %q (must be one of %s)", format, strings.Join(Formats, ", "))
}

// IsDiagram reports whether format is rendered from entries by the dot package.
func IsDiagram(format string) bool {
	return format == FormatDOT || format == FormatSVG
}

// Lines encodes lines as text or JSON. Diagram formats fail with UNSUPPORTED.
func Lines(lines tree.Lines, format string) ([]byte, error) {
	switch format {
	case FormatText:
		return Text(lines), nil
	case FormatJSON:
		return JSON(lines)
	default:
		if err := ValidateFormat(format); err != nil {
			return nil, err
		}
		return nil, errs.New(errs.ErrCodeUnsupported, "format %q needs the linearized entries", format)
	}
}

// Text writes one label per line, each followed by a newline.
func Text(lines tree.Lines) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l.Text)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// JSON encodes lines as an indented array. HTML characters are not escaped
// so labels survive unchanged.
func JSON(lines tree.Lines) ([]byte, error) {
	if lines == nil {
		lines = tree.Lines{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lines); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode JSON")
	}
	return buf.Bytes(), nil
}

// ParseJSON decodes the output of [JSON], keeping id kinds.
func ParseJSON(data []byte) (tree.Lines, error) {
	var lines tree.Lines
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode lines")
	}
	return lines, nil
}
