package elkio

import (
	"encoding/json"
	"io"
	"os"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors"
)

var validNodeKinds = map[model.Kind]bool{
	model.KindStartEvent: true, model.KindEndEvent: true, model.KindIntermediateEvent: true,
	model.KindTask: true, model.KindUserTask: true, model.KindServiceTask: true, model.KindScriptTask: true,
	model.KindExclusiveGateway: true, model.KindInclusiveGateway: true, model.KindParallelGateway: true,
	model.KindEventBasedGateway: true, model.KindSubProcess: true, model.KindCallActivity: true,
	model.KindLane: true, model.KindParticipant: true, model.KindProcess: true,
	model.KindDataObject: true, model.KindDataStore: true, model.KindTextAnnotation: true,
}

var validEdgeKinds = map[model.EdgeKind]bool{
	model.EdgeSequenceFlow: true, model.EdgeMessageFlow: true, model.EdgeAssociation: true,
	model.EdgeDataInputAssociation: true, model.EdgeDataOutputAssociation: true,
}

type rawExpr struct {
	Body string `json:"body"`
}

type rawLabel struct {
	Text   string  `json:"text"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type rawBoundaryEvent struct {
	ID                  string `json:"id"`
	AttachedToRef       string `json:"attachedToRef"`
	Type                string `json:"bpmn.type"`
	CancelActivity      *bool  `json:"cancelActivity,omitempty"`
	EventDefinitionKind string `json:"eventDefinitionKind,omitempty"`
}

type rawEdge struct {
	ID                  string       `json:"id"`
	Type                string       `json:"bpmn.type"`
	Sources             []string     `json:"sources"`
	Targets             []string     `json:"targets"`
	Name                string       `json:"name,omitempty"`
	ConditionExpression *rawExpr     `json:"conditionExpression,omitempty"`
	Sections            []rawSection `json:"sections,omitempty"`
	AbsoluteCoords      bool         `json:"absoluteCoords,omitempty"`
	PoolRelativeCoords  bool         `json:"poolRelativeCoords,omitempty"`
}

type rawPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type rawSection struct {
	StartPoint rawPoint   `json:"startPoint"`
	BendPoints []rawPoint `json:"bendPoints,omitempty"`
	EndPoint   rawPoint   `json:"endPoint"`
}

type rawNode struct {
	ID                  string             `json:"id"`
	Type                string             `json:"bpmn.type"`
	X                   *float64           `json:"x,omitempty"`
	Y                   *float64           `json:"y,omitempty"`
	Width               float64            `json:"width,omitempty"`
	Height              float64            `json:"height,omitempty"`
	Children            []rawNode          `json:"children,omitempty"`
	Edges               []rawEdge          `json:"edges,omitempty"`
	BoundaryEvents      []rawBoundaryEvent `json:"boundaryEvents,omitempty"`
	Labels              []rawLabel         `json:"labels,omitempty"`
	IsExpanded          bool               `json:"isExpanded,omitempty"`
	IsInterrupting      *bool              `json:"isInterrupting,omitempty"`
	EventDefinitionKind string             `json:"eventDefinitionKind,omitempty"`
	GatewayDirection    string             `json:"gatewayDirection,omitempty"`
	Default             string             `json:"default,omitempty"`
	ConditionExpression *rawExpr           `json:"conditionExpression,omitempty"`
	TimerDefinition     string             `json:"timerDefinition,omitempty"`
	DataInputRefs       []string           `json:"dataInputRefs,omitempty"`
	DataOutputRefs      []string           `json:"dataOutputRefs,omitempty"`
}

type rawRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type rawGraph struct {
	ID            string            `json:"id"`
	LayoutOptions map[string]string `json:"layoutOptions,omitempty"`
	Children      []rawNode         `json:"children"`
	Edges         []rawEdge         `json:"edges,omitempty"`
	Messages      []rawRef          `json:"messages,omitempty"`
	Signals       []rawRef          `json:"signals,omitempty"`
	Errors        []rawRef          `json:"errors,omitempty"`
	Escalations   []rawRef          `json:"escalations,omitempty"`
}

// Decode parses an ELK-BPMN Extended Schema v2.0 document from r into the
// hierarchical graph the layout pipeline consumes. Edges nested anywhere
// in the tree are flattened into Graph.Edges, and any participant whose
// direct children are lanes records that sibling order in Graph.Lanes.
func Decode(r io.Reader) (*model.Graph, error) {
	var raw rawGraph
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, bpmnerrors.Wrap(bpmnerrors.ErrCodeInvalidInput, err, "decode elk-bpmn json")
	}

	g := &model.Graph{
		ID:          raw.ID,
		Lanes:       make(map[string][]string),
		Messages:    convertRefs(raw.Messages),
		Signals:     convertRefs(raw.Signals),
		Errors:      convertRefs(raw.Errors),
		Escalations: convertRefs(raw.Escalations),
	}
	for _, rn := range raw.Children {
		n, err := convertNode(rn, g)
		if err != nil {
			return nil, err
		}
		g.Root = append(g.Root, n)
	}
	for _, re := range raw.Edges {
		e, err := convertEdge(re)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// ImportFile opens path and decodes it with [Decode].
func ImportFile(path string) (*model.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bpmnerrors.Wrap(bpmnerrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

func convertNode(rn rawNode, g *model.Graph) (*model.Node, error) {
	kind := model.Kind(rn.Type)
	if !validNodeKinds[kind] {
		return nil, bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "node %q has unknown bpmn.type %q", rn.ID, rn.Type)
	}

	n := &model.Node{
		ID:                  rn.ID,
		Kind:                kind,
		Bounds:              model.Bounds{Width: rn.Width, Height: rn.Height},
		IsExpanded:          rn.IsExpanded,
		EventDefinitionKind: rn.EventDefinitionKind,
		GatewayDirection:    rn.GatewayDirection,
		DefaultOutgoing:     rn.Default,
		TimerDefinition:     rn.TimerDefinition,
		DataInputs:          rn.DataInputRefs,
		DataOutputs:         rn.DataOutputRefs,
	}
	if rn.X != nil && rn.Y != nil {
		n.Bounds.X, n.Bounds.Y = *rn.X, *rn.Y
		n.HasCoords = true
	}
	if rn.IsInterrupting != nil {
		n.IsInterrupting = *rn.IsInterrupting
	} else {
		n.IsInterrupting = true
	}
	if rn.ConditionExpression != nil {
		n.ConditionExpression = rn.ConditionExpression.Body
	}
	if len(rn.Labels) > 0 {
		lb := rn.Labels[0]
		n.Label = model.Label{Text: lb.Text, Set: true, Bounds: model.Bounds{X: lb.X, Y: lb.Y, Width: lb.Width, Height: lb.Height}}
	}

	for _, rbe := range rn.BoundaryEvents {
		be := &model.BoundaryEvent{
			ID:                  rbe.ID,
			AttachedToRef:       rbe.AttachedToRef,
			EventDefinitionKind: rbe.EventDefinitionKind,
			Interrupting:        true,
		}
		if rbe.CancelActivity != nil {
			be.Interrupting = *rbe.CancelActivity
		}
		n.BoundaryEvents = append(n.BoundaryEvents, be)
	}
	for i, be := range n.BoundaryEvents {
		be.BoundaryIndex = i
		be.TotalBoundaries = len(n.BoundaryEvents)
	}

	var laneIDs []string
	for _, rc := range rn.Children {
		cn, err := convertNode(rc, g)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
		if cn.Kind == model.KindLane {
			laneIDs = append(laneIDs, cn.ID)
		}
	}
	if kind == model.KindParticipant && len(laneIDs) > 0 {
		g.Lanes[n.ID] = laneIDs
	}

	for _, re := range rn.Edges {
		e, err := convertEdge(re)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}

	return n, nil
}

func convertRefs(refs []rawRef) []model.CatalogRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]model.CatalogRef, len(refs))
	for i, r := range refs {
		out[i] = model.CatalogRef{ID: r.ID, Name: r.Name}
	}
	return out
}

func exportRefs(refs []model.CatalogRef) []rawRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]rawRef, len(refs))
	for i, r := range refs {
		out[i] = rawRef{ID: r.ID, Name: r.Name}
	}
	return out
}

func convertEdge(re rawEdge) (*model.Edge, error) {
	kind := model.EdgeKind(re.Type)
	if !validEdgeKinds[kind] {
		return nil, bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "edge %q has unknown bpmn.type %q", re.ID, re.Type)
	}
	if len(re.Sources) != 1 || len(re.Targets) != 1 {
		return nil, bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "edge %q must have exactly one source and one target", re.ID)
	}
	e := &model.Edge{
		ID: re.ID, Source: re.Sources[0], Target: re.Targets[0], Kind: kind, Name: re.Name,
		AbsoluteCoords: re.AbsoluteCoords, PoolRelativeCoords: re.PoolRelativeCoords,
	}
	if re.ConditionExpression != nil {
		e.ConditionExpression = re.ConditionExpression.Body
	}
	for _, rs := range re.Sections {
		e.Sections = append(e.Sections, sectionFromRaw(rs))
	}
	return e, nil
}

func sectionFromRaw(rs rawSection) model.Section {
	bends := make([]model.Point, len(rs.BendPoints))
	for i, p := range rs.BendPoints {
		bends[i] = model.Point{X: p.X, Y: p.Y}
	}
	return model.Section{
		Start: model.Point{X: rs.StartPoint.X, Y: rs.StartPoint.Y},
		Bends: bends,
		End:   model.Point{X: rs.EndPoint.X, Y: rs.EndPoint.Y},
	}
}

func sectionToRaw(s model.Section) rawSection {
	bends := make([]rawPoint, len(s.Bends))
	for i, p := range s.Bends {
		bends[i] = rawPoint{X: p.X, Y: p.Y}
	}
	return rawSection{
		StartPoint: rawPoint{X: s.Start.X, Y: s.Start.Y},
		BendPoints: bends,
		EndPoint:   rawPoint{X: s.End.X, Y: s.End.Y},
	}
}

// Encode writes g back to the ELK-BPMN schema, emitting every node's
// current Bounds.X/Y so a partially or fully laid-out graph can be cached
// and later resumed without re-parsing the original input.
func Encode(g *model.Graph, w io.Writer) error {
	raw := rawGraph{
		ID:          g.ID,
		Messages:    exportRefs(g.Messages),
		Signals:     exportRefs(g.Signals),
		Errors:      exportRefs(g.Errors),
		Escalations: exportRefs(g.Escalations),
	}
	for _, n := range g.Root {
		raw.Children = append(raw.Children, exportNode(n))
	}
	for _, e := range g.Edges {
		raw.Edges = append(raw.Edges, exportEdge(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return bpmnerrors.Wrap(bpmnerrors.ErrCodeInternal, err, "encode elk-bpmn json")
	}
	return nil
}

// ExportFile creates (or truncates) path and writes g with [Encode].
func ExportFile(g *model.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return bpmnerrors.Wrap(bpmnerrors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return Encode(g, f)
}

func exportNode(n *model.Node) rawNode {
	rn := rawNode{
		ID:                  n.ID,
		Type:                string(n.Kind),
		Width:               n.Bounds.Width,
		Height:              n.Bounds.Height,
		IsExpanded:          n.IsExpanded,
		EventDefinitionKind: n.EventDefinitionKind,
		GatewayDirection:    n.GatewayDirection,
		Default:             n.DefaultOutgoing,
		TimerDefinition:     n.TimerDefinition,
		DataInputRefs:       n.DataInputs,
		DataOutputRefs:      n.DataOutputs,
	}
	if n.HasCoords {
		x, y := n.Bounds.X, n.Bounds.Y
		rn.X, rn.Y = &x, &y
	}
	if !n.IsInterrupting {
		interrupting := false
		rn.IsInterrupting = &interrupting
	}
	if n.ConditionExpression != "" {
		rn.ConditionExpression = &rawExpr{Body: n.ConditionExpression}
	}
	if n.Label.Set || n.Label.Text != "" {
		rn.Labels = []rawLabel{{
			Text: n.Label.Text, X: n.Label.Bounds.X, Y: n.Label.Bounds.Y,
			Width: n.Label.Bounds.Width, Height: n.Label.Bounds.Height,
		}}
	}
	for _, be := range n.BoundaryEvents {
		cancel := be.Interrupting
		rn.BoundaryEvents = append(rn.BoundaryEvents, rawBoundaryEvent{
			ID: be.ID, AttachedToRef: be.AttachedToRef, Type: string(model.KindBoundaryEvent),
			CancelActivity: &cancel, EventDefinitionKind: be.EventDefinitionKind,
		})
	}
	for _, c := range n.Children {
		rn.Children = append(rn.Children, exportNode(c))
	}
	return rn
}

func exportEdge(e *model.Edge) rawEdge {
	re := rawEdge{
		ID: e.ID, Type: string(e.Kind), Sources: []string{e.Source}, Targets: []string{e.Target}, Name: e.Name,
		AbsoluteCoords: e.AbsoluteCoords, PoolRelativeCoords: e.PoolRelativeCoords,
	}
	if e.ConditionExpression != "" {
		re.ConditionExpression = &rawExpr{Body: e.ConditionExpression}
	}
	for _, s := range e.Sections {
		re.Sections = append(re.Sections, sectionToRaw(s))
	}
	return re
}
