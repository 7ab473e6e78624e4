package debugviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

var nodeShape = map[model.Kind]string{
	model.KindStartEvent:        "circle",
	model.KindEndEvent:          "doublecircle",
	model.KindIntermediateEvent: "circle",
	model.KindBoundaryEvent:     "circle",
	model.KindExclusiveGateway:  "diamond",
	model.KindInclusiveGateway:  "diamond",
	model.KindParallelGateway:   "diamond",
	model.KindEventBasedGateway: "diamond",
	model.KindSubProcess:        "box",
	model.KindCallActivity:      "box",
	model.KindParticipant:       "folder",
	model.KindLane:              "tab",
	model.KindDataObject:        "note",
	model.KindDataStore:         "cylinder",
	model.KindTextAnnotation:    "note",
}

// ToDOT converts g into Graphviz DOT. Containers (participants, lanes,
// expanded subprocesses) become Graphviz clusters so the hierarchy stays
// visible; every other node is a flat box/diamond/circle shaped by kind.
func ToDOT(g *model.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [fontsize=11, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n\n")

	writeNodes(&buf, g.Root, 0)

	buf.WriteString("\n")
	for _, e := range g.Edges {
		style := ""
		if e.Kind == model.EdgeMessageFlow {
			style = " [style=dashed]"
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.Source, e.Target, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNodes(buf *bytes.Buffer, nodes []*model.Node, depth int) {
	indent := strings.Repeat("  ", depth+1)
	for _, n := range nodes {
		if n.Kind.IsContainer() && len(n.Children) > 0 {
			fmt.Fprintf(buf, "%ssubgraph cluster_%s {\n", indent, n.ID)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, n.ID)
			fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
			writeNodes(buf, n.Children, depth+1)
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		writeNode(buf, n, indent)
		for _, be := range n.BoundaryEvents {
			fmt.Fprintf(buf, "%s%q [shape=circle, label=%q];\n", indent, be.ID, be.ID)
		}
	}
}

func writeNode(buf *bytes.Buffer, n *model.Node, indent string) {
	shape := nodeShape[n.Kind]
	if shape == "" {
		shape = "box"
	}
	fmt.Fprintf(buf, "%s%q [shape=%s, label=%q];\n", indent, n.ID, shape, n.ID)
}

// RenderSVG renders a DOT graph to SVG using an embedded Graphviz engine,
// the same way the rest of this module's debug/preview output is
// produced rather than through the final diagram path.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse dot: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}
