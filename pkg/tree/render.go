package tree

import "strings"

// DefaultIndent is the indent unit used when none is configured: a bar
// followed by three no-break spaces, so that browsers keep the spacing.
const DefaultIndent = "|\u00a0\u00a0\u00a0"

// Line is one rendered selectbox option.
type Line struct {
	ID   ID     `json:"id"`
	Text string `json:"label"`
}

// Lines is an ordered list of rendered options.
type Lines []Line

// Map returns the lines keyed by id. The map loses the ordering; use the
// slice itself where order matters.
func (ls Lines) Map() map[ID]string {
	m := make(map[ID]string, len(ls))
	for _, l := range ls {
		m[l.ID] = l.Text
	}
	return m
}

// IDs returns the ids in display order.
func (ls Lines) IDs() []ID {
	ids := make([]ID, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}
	return ids
}

// Texts returns the display strings in order.
func (ls Lines) Texts() []string {
	texts := make([]string, len(ls))
	for i, l := range ls {
		texts[i] = l.Text
	}
	return texts
}

// Render prefixes each entry's name with indent repeated Level times.
// The input order is preserved.
func Render(entries []Entry, indent string) Lines {
	lines := make(Lines, len(entries))
	for i, e := range entries {
		lines[i] = Line{ID: e.ID, Text: strings.Repeat(indent, e.Level) + e.Name}
	}
	return lines
}
