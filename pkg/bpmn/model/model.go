// Package model defines the graph the layout pipeline consumes and
// produces: nodes, edges, boundary events, and containers, plus the
// Validate pass that enforces the graph's structural invariants before layout work
// begins.
package model

// Kind tags a node with its BPMN element category. Layout decisions switch
// on this tag rather than dispatching through an interface hierarchy.
type Kind string

const (
	KindStartEvent        Kind = "startEvent"
	KindEndEvent          Kind = "endEvent"
	KindIntermediateEvent Kind = "intermediateEvent"
	KindBoundaryEvent     Kind = "boundaryEvent"
	KindTask              Kind = "task"
	KindUserTask          Kind = "userTask"
	KindServiceTask       Kind = "serviceTask"
	KindScriptTask        Kind = "scriptTask"
	KindExclusiveGateway  Kind = "exclusiveGateway"
	KindInclusiveGateway  Kind = "inclusiveGateway"
	KindParallelGateway   Kind = "parallelGateway"
	KindEventBasedGateway Kind = "eventBasedGateway"
	KindSubProcess        Kind = "subProcess"
	KindCallActivity      Kind = "callActivity"
	KindLane              Kind = "lane"
	KindParticipant       Kind = "participant"
	KindProcess           Kind = "process"
	KindDataObject        Kind = "dataObject"
	KindDataStore         Kind = "dataStore"
	KindTextAnnotation    Kind = "textAnnotation"
)

// IsGateway reports whether k is one of the diamond-rendered gateway kinds.
func (k Kind) IsGateway() bool {
	switch k {
	case KindExclusiveGateway, KindInclusiveGateway, KindParallelGateway, KindEventBasedGateway:
		return true
	default:
		return false
	}
}

// IsEvent reports whether k is a circle-rendered event kind.
func (k Kind) IsEvent() bool {
	switch k {
	case KindStartEvent, KindEndEvent, KindIntermediateEvent, KindBoundaryEvent:
		return true
	default:
		return false
	}
}

// IsContainer reports whether k is a container kind: pools, lanes, and
// subprocesses (expanded or not). A plain top-level process is not itself
// a container; the package function IsOffsettingContainer narrows
// subprocesses to expanded ones and applies the "process directly inside
// a participant" exception.
func (k Kind) IsContainer() bool {
	switch k {
	case KindParticipant, KindLane, KindSubProcess:
		return true
	default:
		return false
	}
}

// Point is an x/y coordinate pair.
type Point struct {
	X, Y float64
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	X, Y, Width, Height float64
}

// Label holds a node or edge's display text and the box it is rendered in,
// once the coordinate folder has placed it.
type Label struct {
	Text   string
	Bounds Bounds
	Set    bool
}

// Node is a single BPMN element in the hierarchical graph.
type Node struct {
	ID     string
	Kind   Kind
	Bounds Bounds
	// HasCoords is false until a layout stage has assigned Bounds.X/Y.
	HasCoords bool

	// VisualHeight, if non-zero and smaller than Bounds.Height, marks a task
	// whose layout box was grown to fit attached data objects; the fold clamps
	// edge entries to the visual center.
	VisualHeight float64

	Label Label

	Children       []*Node
	BoundaryEvents []*BoundaryEvent

	// Kind-specific attributes.
	IsExpanded          bool
	IsInterrupting      bool
	EventDefinitionKind string
	GatewayDirection    string
	DefaultOutgoing     string
	ConditionExpression string
	TimerDefinition     string

	// IOSpecification lists auxiliary data-input/output node ids attached to
	// a task, triggering the fold's data-object shape placement.
	DataInputs  []string
	DataOutputs []string
}

// BoundaryEvent is an event attached to a task/subprocess host.
type BoundaryEvent struct {
	ID              string
	AttachedToRef   string
	BoundaryIndex   int
	TotalBoundaries int
	Bounds          Bounds
	Interrupting    bool
	EventDefinitionKind string
}

// EdgeKind distinguishes BPMN connection types.
type EdgeKind string

const (
	EdgeSequenceFlow         EdgeKind = "sequenceFlow"
	EdgeMessageFlow          EdgeKind = "messageFlow"
	EdgeAssociation          EdgeKind = "association"
	EdgeDataInputAssociation EdgeKind = "dataInputAssociation"
	EdgeDataOutputAssociation EdgeKind = "dataOutputAssociation"
)

// Section is one contiguous polyline of an edge: a start point, ordered
// bend points, and an end point.
type Section struct {
	Start  Point
	Bends  []Point
	End    Point
}

// Waypoints returns the section as a single ordered point slice.
func (s Section) Waypoints() []Point {
	pts := make([]Point, 0, len(s.Bends)+2)
	pts = append(pts, s.Start)
	pts = append(pts, s.Bends...)
	pts = append(pts, s.End)
	return pts
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID                 string
	Source             string
	Target             string
	Kind               EdgeKind
	Name               string
	ConditionExpression string
	Sections           []Section

	// AbsoluteCoords marks an edge whose Sections are already in the final
	// global coordinate frame (used for idempotent re-layout).
	AbsoluteCoords bool
	// PoolRelativeCoords marks an edge whose Sections are relative to the
	// owning pool's offset rather than the source node's.
	PoolRelativeCoords bool

	// RoutingFailed marks an edge for which no obstacle-free path could be
	// found. No stage of this module sets it; the pipeline reports routing
	// failures through pipeline.Result.RoutingFailures instead.
	RoutingFailed bool
}

// Graph is the full hierarchical process/collaboration tree plus its flat
// edge list. Edges are stored flat (not nested in containers) because
// sources and targets may live in different containers (lanes, pools).
type Graph struct {
	ID    string
	Root  []*Node
	Edges []*Edge

	// Lanes maps a participant (pool) id to the ids of its direct child
	// lanes, in declared order, used by the solver's "below, 0 gap" constraint.
	Lanes map[string][]string

	// Messages, Signals, Errors, and Escalations are the global catalogs
	// an ELK-BPMN document declares at the root, referenced by id from
	// nodes' EventDefinitionKind. Layout never reads them; they pass
	// through unchanged for the XML serializer's root-level definitions.
	Messages    []CatalogRef
	Signals     []CatalogRef
	Errors      []CatalogRef
	Escalations []CatalogRef
}

// CatalogRef is a named global definition (message, signal, error,
// escalation) declared once at the document root and referenced by id.
type CatalogRef struct {
	ID   string
	Name string
}

// StandardDimensions are the default width/height for node kinds lacking a
// caller-supplied size.
var StandardDimensions = map[Kind][2]float64{
	KindStartEvent:        {36, 36},
	KindEndEvent:          {36, 36},
	KindIntermediateEvent: {36, 36},
	KindBoundaryEvent:     {36, 36},
	KindTask:              {100, 80},
	KindUserTask:          {100, 80},
	KindServiceTask:       {100, 80},
	KindScriptTask:        {100, 80},
	KindExclusiveGateway:  {50, 50},
	KindInclusiveGateway:  {50, 50},
	KindParallelGateway:   {50, 50},
	KindEventBasedGateway: {50, 50},
	KindSubProcess:        {100, 80},
	KindCallActivity:      {100, 80},
	KindDataObject:        {36, 50},
	KindDataStore:         {50, 50},
}

// Center returns the midpoint of b.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Right returns the x coordinate of b's right edge.
func (b Bounds) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of b's bottom edge.
func (b Bounds) Bottom() float64 { return b.Y + b.Height }

// Walk calls fn for every node in the tree, depth-first, pre-order.
func (g *Graph) Walk(fn func(n *Node)) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Children)
		}
	}
	walk(g.Root)
}

// Index builds an id -> *Node lookup over the whole tree.
func (g *Graph) Index() map[string]*Node {
	idx := make(map[string]*Node)
	g.Walk(func(n *Node) { idx[n.ID] = n })
	return idx
}

// FindNode returns the node with the given id, or nil.
func (g *Graph) FindNode(id string) *Node {
	return g.Index()[id]
}

// EdgesBySource groups edges by their source node id.
func (g *Graph) EdgesBySource() map[string][]*Edge {
	m := make(map[string][]*Edge)
	for _, e := range g.Edges {
		m[e.Source] = append(m[e.Source], e)
	}
	return m
}

// EdgesByTarget groups edges by their target node id.
func (g *Graph) EdgesByTarget() map[string][]*Edge {
	m := make(map[string][]*Edge)
	for _, e := range g.Edges {
		m[e.Target] = append(m[e.Target], e)
	}
	return m
}

// ParentOf returns the direct parent of the node with id, or nil if it is
// a root node or unknown. Used by container-offset resolution.
func (g *Graph) ParentOf(id string) *Node {
	var parent *Node
	var walk func(nodes []*Node, p *Node)
	walk = func(nodes []*Node, p *Node) {
		for _, n := range nodes {
			if n.ID == id {
				parent = p
				return
			}
			walk(n.Children, n)
		}
	}
	walk(g.Root, nil)
	return parent
}
