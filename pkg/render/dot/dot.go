// Package dot renders a linearized selectbox tree as a Graphviz diagram.
//
// Nodes are the emitted entries, edges run from each entry to the entries
// placed under it. Records dropped by the depth bound or never reached from a
// root do not appear, so the diagram shows exactly what the selectbox shows.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/selecttree/pkg/tree"
)

// Options configures diagram rendering.
type Options struct {
	// RankDir is the Graphviz rankdir. Defaults to "LR".
	RankDir string
	// Detailed adds the id and level to every label.
	Detailed bool
}

// ToDOT converts entries to Graphviz DOT source.
func ToDOT(entries []tree.Entry, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, e := range entries {
		attrs := []string{"label=" + quote(label(e, opts.Detailed))}
		if e.Level == 0 {
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(nodeID(e.ID)), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range entries {
		if e.ParentID != nil {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(nodeID(*e.ParentID)), quote(nodeID(e.ID)))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns s as a DOT double-quoted string. Only backslashes, quotes
// and newlines are escaped; every other character, printable or not, is
// written through as UTF-8.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// nodeID keeps integer and string ids with the same text apart.
func nodeID(id tree.ID) string {
	if id.Kind() == tree.KindInt {
		return "i:" + id.String()
	}
	return "s:" + id.String()
}

func label(e tree.Entry, detailed bool) string {
	if !detailed {
		return e.Name
	}
	return fmt.Sprintf("%s\nid: %s\nlevel: %d", e.Name, e.ID, e.Level)
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
