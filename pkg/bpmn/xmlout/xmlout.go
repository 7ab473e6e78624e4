package xmlout

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/fold"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

const targetNamespace = "http://bpmnlayout.dev/schema/1.0"

var activityTag = map[model.Kind]string{
	model.KindTask:         "task",
	model.KindUserTask:     "userTask",
	model.KindServiceTask:  "serviceTask",
	model.KindScriptTask:   "scriptTask",
	model.KindSubProcess:   "subProcess",
	model.KindCallActivity: "callActivity",
}

var gatewayTag = map[model.Kind]string{
	model.KindExclusiveGateway:  "exclusiveGateway",
	model.KindInclusiveGateway:  "inclusiveGateway",
	model.KindParallelGateway:   "parallelGateway",
	model.KindEventBasedGateway: "eventBasedGateway",
}

// eventDefinitionTag maps a node's EventDefinitionKind to the BPMN
// eventDefinition element nested inside its event. An empty
// EventDefinitionKind produces a plain (none) event with no child.
var eventDefinitionTag = map[string]string{
	"timer":       "timerEventDefinition",
	"message":     "messageEventDefinition",
	"signal":      "signalEventDefinition",
	"error":       "errorEventDefinition",
	"escalation":  "escalationEventDefinition",
	"conditional": "conditionalEventDefinition",
	"terminate":   "terminateEventDefinition",
}

// Render assembles the full BPMN 2.0 XML document for g, using d for
// every element's geometry. g and d must come from the same pipeline
// run; Render does not re-derive or validate geometry itself.
func Render(g *model.Graph, d *fold.Diagram) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" `+
		`xmlns:bpmndi="http://www.omg.org/spec/BPMN/20100524/DI" `+
		`xmlns:dc="http://www.omg.org/spec/DD/20100524/DC" `+
		`xmlns:di="http://www.omg.org/spec/DD/20100524/DI" `+
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" `+
		`id="definitions_%s" targetNamespace="%s">`+"\n", graphID(g), targetNamespace)

	renderCatalogs(&buf, g)

	participants := rootParticipants(g)
	if len(participants) > 0 {
		renderCollaboration(&buf, g, participants)
	} else {
		renderProcess(&buf, "process_"+graphID(g), g.Root, g)
	}

	renderDiagram(&buf, g, d)

	buf.WriteString("</bpmn:definitions>\n")
	return buf.Bytes()
}

func graphID(g *model.Graph) string {
	if g.ID == "" {
		return "main"
	}
	return g.ID
}

func rootParticipants(g *model.Graph) []*model.Node {
	var out []*model.Node
	for _, n := range g.Root {
		if n.Kind == model.KindParticipant {
			out = append(out, n)
		}
	}
	return out
}

func renderCatalogs(buf *bytes.Buffer, g *model.Graph) {
	for _, m := range g.Messages {
		fmt.Fprintf(buf, `  <bpmn:message id=%s name=%s />`+"\n", attr(m.ID), attr(m.Name))
	}
	for _, s := range g.Signals {
		fmt.Fprintf(buf, `  <bpmn:signal id=%s name=%s />`+"\n", attr(s.ID), attr(s.Name))
	}
	for _, e := range g.Errors {
		fmt.Fprintf(buf, `  <bpmn:error id=%s name=%s />`+"\n", attr(e.ID), attr(e.Name))
	}
	for _, e := range g.Escalations {
		fmt.Fprintf(buf, `  <bpmn:escalation id=%s name=%s />`+"\n", attr(e.ID), attr(e.Name))
	}
}

// renderCollaboration emits bpmn:collaboration (participants + message
// flows) followed by one bpmn:process per participant. A participant's
// direct children are its process's flow elements, matching the model's
// "process directly inside a participant" offsetting rule; if a
// participant contains lanes instead, the lanes' own children are the
// flow elements and the lanes are additionally recorded in a laneSet.
func renderCollaboration(buf *bytes.Buffer, g *model.Graph, participants []*model.Node) {
	fmt.Fprintf(buf, "  <bpmn:collaboration id=%s>\n", attr("collaboration_"+graphID(g)))
	for _, p := range participants {
		fmt.Fprintf(buf, `    <bpmn:participant id=%s name=%s processRef=%s />`+"\n",
			attr(p.ID), attr(p.ID), attr("process_"+p.ID))
	}
	for _, e := range g.Edges {
		if e.Kind == model.EdgeMessageFlow {
			renderFlowRef(buf, "messageFlow", e, "    ")
		}
	}
	buf.WriteString("  </bpmn:collaboration>\n")

	for _, p := range participants {
		renderProcess(buf, "process_"+p.ID, p.Children, g)
	}
}

// renderProcess emits one bpmn:process containing nodes' flow elements
// and the sequence flows/associations whose source lives among them.
func renderProcess(buf *bytes.Buffer, id string, nodes []*model.Node, g *model.Graph) {
	fmt.Fprintf(buf, "  <bpmn:process id=%s isExecutable=\"false\">\n", attr(id))

	lanes, flowNodes := splitLanes(nodes)
	if len(lanes) > 0 {
		renderLaneSet(buf, id, lanes)
	}

	present := make(map[string]bool)
	var collect func(ns []*model.Node)
	collect = func(ns []*model.Node) {
		for _, n := range ns {
			present[n.ID] = true
			collect(n.Children)
		}
	}
	collect(flowNodes)
	for _, lane := range lanes {
		collect(lane.Children)
		flowNodes = append(flowNodes, lane.Children...)
	}

	for _, n := range flowNodes {
		renderNode(buf, n, "    ")
	}
	for _, e := range g.Edges {
		if !present[e.Source] {
			continue
		}
		switch e.Kind {
		case model.EdgeSequenceFlow:
			renderFlowRef(buf, "sequenceFlow", e, "    ")
		case model.EdgeAssociation:
			renderFlowRef(buf, "association", e, "    ")
		}
	}

	buf.WriteString("  </bpmn:process>\n")
}

func splitLanes(nodes []*model.Node) (lanes, rest []*model.Node) {
	for _, n := range nodes {
		if n.Kind == model.KindLane {
			lanes = append(lanes, n)
		} else {
			rest = append(rest, n)
		}
	}
	return lanes, rest
}

func renderLaneSet(buf *bytes.Buffer, processID string, lanes []*model.Node) {
	fmt.Fprintf(buf, "      <bpmn:laneSet id=%s>\n", attr("laneSet_"+processID))
	for _, lane := range lanes {
		fmt.Fprintf(buf, "        <bpmn:lane id=%s name=%s>\n", attr(lane.ID), attr(lane.ID))
		for _, child := range lane.Children {
			fmt.Fprintf(buf, "          <bpmn:flowNodeRef>%s</bpmn:flowNodeRef>\n", escape(child.ID))
		}
		buf.WriteString("        </bpmn:lane>\n")
	}
	buf.WriteString("      </bpmn:laneSet>\n")
}

func renderFlowRef(buf *bytes.Buffer, tag string, e *model.Edge, indent string) {
	fmt.Fprintf(buf, `%s<bpmn:%s id=%s sourceRef=%s targetRef=%s`, indent, tag, attr(e.ID), attr(e.Source), attr(e.Target))
	if e.ConditionExpression == "" {
		buf.WriteString(" />\n")
		return
	}
	fmt.Fprintf(buf, ">\n%s  <bpmn:conditionExpression xsi:type=\"bpmn:tFormalExpression\">%s</bpmn:conditionExpression>\n%s</bpmn:%s>\n",
		indent, escape(e.ConditionExpression), indent, tag)
}

func renderNode(buf *bytes.Buffer, n *model.Node, indent string) {
	switch {
	case n.Kind.IsEvent():
		renderEvent(buf, n, indent)
	case n.Kind.IsGateway():
		renderGateway(buf, n, indent)
	case n.Kind == model.KindDataObject:
		fmt.Fprintf(buf, "%s<bpmn:dataObjectReference id=%s name=%s dataObjectRef=%s />\n",
			indent, attr(n.ID), attr(n.ID), attr(n.ID+"_def"))
	case n.Kind == model.KindDataStore:
		fmt.Fprintf(buf, "%s<bpmn:dataStoreReference id=%s name=%s />\n", indent, attr(n.ID), attr(n.ID))
	case n.Kind == model.KindTextAnnotation:
		fmt.Fprintf(buf, "%s<bpmn:textAnnotation id=%s>\n%s  <bpmn:text>%s</bpmn:text>\n%s</bpmn:textAnnotation>\n",
			indent, attr(n.ID), indent, escape(n.Label.Text), indent)
	case activityTag[n.Kind] != "":
		renderActivity(buf, n, indent)
	default:
		fmt.Fprintf(buf, "%s<!-- unrenderable node kind %q for %s -->\n", indent, n.Kind, n.ID)
	}
}

// renderEvent handles startEvent/endEvent/intermediateEvent nodes found
// directly in the flow-node tree. Boundary events never appear there —
// they live on their host's BoundaryEvents slice and are rendered by
// renderActivity alongside the host.
func renderEvent(buf *bytes.Buffer, n *model.Node, indent string) {
	tag := "intermediateCatchEvent"
	switch n.Kind {
	case model.KindStartEvent:
		tag = "startEvent"
	case model.KindEndEvent:
		tag = "endEvent"
	}

	defTag := eventDefinitionTag[n.EventDefinitionKind]
	if defTag == "" {
		fmt.Fprintf(buf, "%s<bpmn:%s id=%s name=%s />\n", indent, tag, attr(n.ID), attr(n.ID))
		return
	}
	fmt.Fprintf(buf, "%s<bpmn:%s id=%s name=%s>\n", indent, tag, attr(n.ID), attr(n.ID))
	if n.EventDefinitionKind == "timer" && n.TimerDefinition != "" {
		fmt.Fprintf(buf, "%s  <bpmn:%s id=%s>\n%s    <bpmn:timeDuration>%s</bpmn:timeDuration>\n%s  </bpmn:%s>\n",
			indent, defTag, attr(n.ID+"_def"), indent, escape(n.TimerDefinition), indent, defTag)
	} else {
		fmt.Fprintf(buf, "%s  <bpmn:%s id=%s />\n", indent, defTag, attr(n.ID+"_def"))
	}
	fmt.Fprintf(buf, "%s</bpmn:%s>\n", indent, tag)
}

func renderGateway(buf *bytes.Buffer, n *model.Node, indent string) {
	tag := gatewayTag[n.Kind]
	dir := n.GatewayDirection
	if dir == "" {
		dir = "Unspecified"
	}
	fmt.Fprintf(buf, "%s<bpmn:%s id=%s name=%s gatewayDirection=%s", indent, tag, attr(n.ID), attr(n.ID), attr(dir))
	if n.DefaultOutgoing != "" {
		fmt.Fprintf(buf, " default=%s", attr(n.DefaultOutgoing))
	}
	buf.WriteString(" />\n")
}

func renderActivity(buf *bytes.Buffer, n *model.Node, indent string) {
	tag := activityTag[n.Kind]
	hasBody := len(n.BoundaryEvents) > 0 || len(n.DataInputs) > 0 || len(n.DataOutputs) > 0 ||
		(n.Kind == model.KindSubProcess && len(n.Children) > 0)

	if !hasBody {
		fmt.Fprintf(buf, "%s<bpmn:%s id=%s name=%s />\n", indent, tag, attr(n.ID), attr(n.ID))
	} else {
		fmt.Fprintf(buf, "%s<bpmn:%s id=%s name=%s>\n", indent, tag, attr(n.ID), attr(n.ID))
		for _, ref := range n.DataInputs {
			fmt.Fprintf(buf, "%s  <bpmn:dataInputAssociation id=%s><bpmn:sourceRef>%s</bpmn:sourceRef></bpmn:dataInputAssociation>\n",
				indent, attr(n.ID+"_"+ref+"_in"), escape(ref))
		}
		for _, ref := range n.DataOutputs {
			fmt.Fprintf(buf, "%s  <bpmn:dataOutputAssociation id=%s><bpmn:targetRef>%s</bpmn:targetRef></bpmn:dataOutputAssociation>\n",
				indent, attr(n.ID+"_"+ref+"_out"), escape(ref))
		}
		if n.Kind == model.KindSubProcess {
			for _, child := range n.Children {
				renderNode(buf, child, indent+"  ")
			}
		}
		fmt.Fprintf(buf, "%s</bpmn:%s>\n", indent, tag)
	}

	for _, be := range n.BoundaryEvents {
		defTag := eventDefinitionTag[be.EventDefinitionKind]
		cancel := "true"
		if !be.Interrupting {
			cancel = "false"
		}
		if defTag == "" {
			fmt.Fprintf(buf, "%s<bpmn:boundaryEvent id=%s name=%s attachedToRef=%s cancelActivity=%s />\n",
				indent, attr(be.ID), attr(be.ID), attr(n.ID), attr(cancel))
			continue
		}
		fmt.Fprintf(buf, "%s<bpmn:boundaryEvent id=%s name=%s attachedToRef=%s cancelActivity=%s>\n",
			indent, attr(be.ID), attr(be.ID), attr(n.ID), attr(cancel))
		fmt.Fprintf(buf, "%s  <bpmn:%s id=%s />\n", indent, defTag, attr(be.ID+"_def"))
		fmt.Fprintf(buf, "%s</bpmn:boundaryEvent>\n", indent)
	}
}

// renderDiagram emits the bpmndi:BPMNDiagram built from d's shapes and
// edges, each carrying the absolute geometry the pipeline's coordinate
// folder computed.
func renderDiagram(buf *bytes.Buffer, g *model.Graph, d *fold.Diagram) {
	fmt.Fprintf(buf, "  <bpmndi:BPMNDiagram id=%s>\n", attr("diagram_"+graphID(g)))
	fmt.Fprintf(buf, "    <bpmndi:BPMNPlane id=%s bpmnElement=%s>\n", attr("plane_"+graphID(g)), attr(graphID(g)))

	for _, s := range d.Shapes {
		renderShape(buf, s)
	}
	for _, e := range d.Edges {
		renderEdge(buf, e)
	}

	buf.WriteString("    </bpmndi:BPMNPlane>\n")
	buf.WriteString("  </bpmndi:BPMNDiagram>\n")
}

func renderShape(buf *bytes.Buffer, s fold.Shape) {
	fmt.Fprintf(buf, `      <bpmndi:BPMNShape id=%s bpmnElement=%s`, attr("shape_"+s.ID), attr(s.ID))
	if s.Kind == model.KindSubProcess {
		fmt.Fprintf(buf, ` isExpanded=%s`, attr(boolAttr(s.IsExpanded)))
	}
	if s.IsHorizontal {
		buf.WriteString(` isHorizontal="true"`)
	}
	buf.WriteString(">\n")
	fmt.Fprintf(buf, `        <dc:Bounds x="%.2f" y="%.2f" width="%.2f" height="%.2f" />`+"\n",
		s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height)
	if s.Label != nil {
		renderShapeLabel(buf, *s.Label)
	}
	buf.WriteString("      </bpmndi:BPMNShape>\n")
}

func renderShapeLabel(buf *bytes.Buffer, l fold.ShapeLabel) {
	buf.WriteString("        <bpmndi:BPMNLabel>\n")
	fmt.Fprintf(buf, `          <dc:Bounds x="%.2f" y="%.2f" width="%.2f" height="%.2f" />`+"\n",
		l.Bounds.X, l.Bounds.Y, l.Bounds.Width, l.Bounds.Height)
	buf.WriteString("        </bpmndi:BPMNLabel>\n")
}

func renderEdge(buf *bytes.Buffer, e fold.EdgeDI) {
	fmt.Fprintf(buf, `      <bpmndi:BPMNEdge id=%s bpmnElement=%s>`+"\n", attr("edge_"+e.ID), attr(e.ID))
	for _, sec := range e.Sections {
		for _, p := range sec.Waypoints() {
			fmt.Fprintf(buf, `        <di:waypoint x="%.2f" y="%.2f" />`+"\n", p.X, p.Y)
		}
	}
	if e.Label != nil {
		renderShapeLabel(buf, *e.Label)
	}
	buf.WriteString("      </bpmndi:BPMNEdge>\n")
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// attr quotes s as a double-quoted XML attribute value.
func attr(s string) string {
	return `"` + escape(s) + `"`
}

// escape replaces the five XML-significant characters.
func escape(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;", `'`, "&apos;")
	return r.Replace(s)
}
