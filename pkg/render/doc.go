// Package render turns rendered selectbox lines into output documents.
//
// # Formats
//
//   - [FormatText]: one option per line, the indented label only
//   - [FormatJSON]: an ordered array of {"id", "label"} objects; integer ids
//     stay numbers and string ids stay strings
//   - [FormatDOT] and [FormatSVG]: a Graphviz diagram of the linearized tree,
//     produced by the [dot] subpackage
//
// Text and JSON are produced here directly:
//
//	out, err := render.Lines(lines, render.FormatJSON)
//
// The diagram formats need the linearized entries rather than the lines:
//
//	src := dot.ToDOT(entries, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
package render
