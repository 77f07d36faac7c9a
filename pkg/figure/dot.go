package figure

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts figure groups to Graphviz DOT format for debugging
// the grouping cascade. Each group becomes a cluster holding one node
// per member fragment; captioned groups carry the caption as the
// cluster label. The resulting string renders with [RenderDOTSVG] or
// any external dot binary.
func ToDOT(groups []Group) string {
	var buf bytes.Buffer
	buf.WriteString("graph figures {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, g := range groups {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", g.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", clusterLabel(g))
		if g.Caption == "" {
			buf.WriteString("    style=dashed;\n")
			buf.WriteString("    color=grey;\n")
		}

		for i, m := range g.Members {
			id := memberID(g, i)
			fmt.Fprintf(&buf, "    %q [%s];\n", id, strings.Join(memberAttrs(m), ", "))
		}

		// Chain members so the cluster keeps reading order.
		for i := 1; i < len(g.Members); i++ {
			fmt.Fprintf(&buf, "    %q -- %q [style=dotted];\n", memberID(g, i-1), memberID(g, i))
		}

		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func clusterLabel(g Group) string {
	label := g.ID
	if g.Caption != "" {
		caption := g.Caption
		if len(caption) > 60 {
			caption = caption[:57] + "..."
		}
		label += "\n" + caption
	}
	return label
}

func memberID(g Group, i int) string {
	return fmt.Sprintf("%s/%d", g.ID, i)
}

func memberAttrs(m Entry) []string {
	label := filepath.Base(m.SourcePath())
	if label == "" || label == "." {
		label = "(no source)"
	}
	if m.HasBBox {
		label += fmt.Sprintf("\n%.0fx%.0f", m.BBox.Width(), m.BBox.Height())
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !m.HasBBox {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	} else if m.HasOrdinal {
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	return attrs
}

// RenderDOTSVG renders a DOT graph to SVG using in-process Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
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
	return buf.Bytes(), nil
}
