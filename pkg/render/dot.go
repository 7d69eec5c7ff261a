package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// DotOptions configures portal graph rendering.
type DotOptions struct {
	// Detailed includes map sizes and portal coordinates in labels.
	// When false, nodes show only the map handle.
	Detailed bool
}

// ToDOT converts the portal graph reachable from root to Graphviz DOT
// format. Each reachable map becomes a node and each portal a directed
// edge toward its target. Sub-map embeds are drawn as dashed edges.
func ToDOT(r *dungeon.Registry, root dungeon.Handle, opts DotOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dungeon {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	visited := map[dungeon.Handle]bool{}
	queue := []dungeon.Handle{root}
	var edges []string
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if visited[h] {
			continue
		}
		visited[h] = true

		var size geom.Size
		var portals []dungeon.Portal
		var subs []dungeon.SubMap
		r.Read(h, func(m *dungeon.Map) {
			size = m.Size()
			portals = m.Portals()
			subs = m.SubMaps()
		})

		fmt.Fprintf(&buf, "  %q [label=%q];\n", nodeID(h), nodeLabel(h, size, len(portals), opts.Detailed))

		for _, p := range portals {
			label := ""
			if opts.Detailed {
				label = fmt.Sprintf(" [label=\"(%d,%d) %s\"]", p.LocalPos.X, p.LocalPos.Y, p.Facing)
			}
			edges = append(edges, fmt.Sprintf("  %q -> %q%s;", nodeID(h), nodeID(p.Target), label))
			queue = append(queue, p.Target)
		}
		for _, s := range subs {
			edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed];", nodeID(h), nodeID(s.Target)))
			queue = append(queue, s.Target)
		}
	}

	buf.WriteString("\n")
	buf.WriteString(strings.Join(edges, "\n"))
	if len(edges) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(h dungeon.Handle) string {
	return fmt.Sprintf("map%d", h)
}

func nodeLabel(h dungeon.Handle, size geom.Size, portals int, detailed bool) string {
	if !detailed {
		return nodeID(h)
	}
	return fmt.Sprintf("map%d\n%dx%d, %d portals", h, size.Width, size.Height, portals)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
