// Package pipeline implements the layout pipeline's orchestrator:
// the single entry point that validates and sizes a graph, runs it through
// seedLayout (the stand-in for the external layering collaborator) and
// every internal stage in order, and hands the result to the coordinate
// folder. A job's progress through
// these stages is expressed as a Stage, and any error short-circuits to
// StageFailed with the offending stage attached.
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/boundary"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/compact"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/constraint"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/edgefix"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/fold"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/normalize"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/propagate"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors"
)

// Stage names one step of a layout job's state machine.
type Stage string

const (
	StageInput              Stage = "INPUT"
	StageSized              Stage = "SIZED"
	StageLayered            Stage = "LAYERED"
	StageBoundaryFixed      Stage = "BOUNDARY_FIXED"
	StageGatewaysPropagated Stage = "GATEWAYS_PROPAGATED"
	StageNormalized         Stage = "NORMALIZED"
	StageEdgesFixed         Stage = "EDGES_FIXED"
	StageCompacted          Stage = "COMPACTED"
	StageFolded             Stage = "FOLDED"
	StageDone               Stage = "DONE"
	StageFailed             Stage = "FAILED"
)

// Options configures a ToBpmn run. Gaps follow the constraint vocabulary's
// defaults; Compact/CompactDependency/Refine are opt-in passes layered on
// top of the mandatory stages.
type Options struct {
	HorizontalGap     float64
	VerticalGap       float64
	ContainerPadding  float64
	Compact           bool
	CompactDependency bool
	CompactMinGap     float64
	Refine            bool
}

// DefaultOptions returns the constraint vocabulary's default gaps with
// every optional pass disabled.
func DefaultOptions() Options {
	return Options{
		HorizontalGap:    50,
		VerticalGap:      30,
		ContainerPadding: 20,
		CompactMinGap:    30,
	}
}

// StageError reports which stage failed and why; Unwrap exposes the
// underlying bpmnerrors.Error so callers can still inspect its Code.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is the pipeline's complete output: the folded diagram plus the stage it
// reached (StageDone on success).
type Result struct {
	Diagram *fold.Diagram
	Stage   Stage
	// RoutingFailures holds the ids of every edge the crossing-repair and
	// boundary stages could only place via the A* fallback, or for which
	// even that found no path. Recovered locally, never fatal.
	// Each is also debug-logged as it's discovered.
	RoutingFailures []string
}

// ToBpmn runs the graph through every stage in order and folds the
// result. On success Stage is StageDone; on failure it returns a
// *StageError identifying which stage rejected the graph.
func ToBpmn(g *model.Graph, opts Options) (Result, error) {
	stage := StageInput
	if err := model.Validate(g); err != nil {
		return Result{Stage: StageFailed}, &StageError{Stage: stage, Err: err}
	}

	stage = StageSized
	model.ApplyDefaultSizes(g)

	stage = StageLayered
	seedLayout(g, opts)

	stage = StageBoundaryFixed
	bres := boundary.Layout(g, opts.HorizontalGap)

	stage = StageGatewaysPropagated
	propagate.Propagate(g, bres.ConvergingGateways)

	stage = StageNormalized
	normalize.Normalize(g, bres.ConvergingGateways, bres.Moved)

	stage = StageEdgesFixed
	routingFailures := append([]string(nil), bres.RoutingFailures...)
	routingFailures = append(routingFailures, fixAllEdges(g)...)
	for _, edgeID := range routingFailures {
		logRoutingFailure(edgeID)
	}

	stage = StageCompacted
	if opts.Compact {
		runCompact(g, opts)
	}
	if opts.Refine {
		refine(g, opts)
	}

	stage = StageFolded
	diagram := fold.Fold(g)

	return Result{Diagram: diagram, Stage: StageDone, RoutingFailures: routingFailures}, nil
}

// logRoutingFailure debug-logs a RoutingFailure recovery (the pipeline
// continues, the failure is merely flagged) the same way
// UnsatisfiableConstraints fallbacks are logged rather than raised.
func logRoutingFailure(edgeID string) {
	log.Default().Debug(bpmnerrors.New(bpmnerrors.ErrCodeRoutingFailure, "edge %q fell back to A* routing or a straight segment", edgeID).Error())
}

// fixAllEdges runs crossing repair over every sequence-flow edge whose
// endpoints share a container, using that container's other direct
// children as obstacles. Boundary-branch edges were already repaired by
// the boundary stage's edge recalculation and are skipped here. Returns
// the ids of edges whose rerouting had to fall back to the A* router.
func fixAllEdges(g *model.Graph) []string {
	boundarySources := make(map[string]bool)
	g.Walk(func(n *model.Node) {
		for _, be := range n.BoundaryEvents {
			boundarySources[be.ID] = true
		}
	})

	var routingFailures []string
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		obstacles := make([]edgefix.Obstacle, 0, len(nodes))
		siblingSet := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			obstacles = append(obstacles, edgefix.Obstacle{ID: n.ID, Bounds: n.Bounds})
			siblingSet[n.ID] = true
		}
		for _, e := range g.Edges {
			if e.Kind != model.EdgeSequenceFlow || boundarySources[e.Source] {
				continue
			}
			if !siblingSet[e.Source] || !siblingSet[e.Target] {
				continue
			}
			var src, tgt model.Bounds
			for _, n := range nodes {
				if n.ID == e.Source {
					src = n.Bounds
				}
				if n.ID == e.Target {
					tgt = n.Bounds
				}
			}
			if len(e.Sections) == 0 {
				continue
			}
			pts := e.Sections[0].Waypoints()
			fixed, failed := edgefix.FixEdge(e.Source, e.Target, src, tgt, pts, obstacles)
			e.Sections = []model.Section{sectionFromPoints(fixed)}
			if failed {
				routingFailures = append(routingFailures, e.ID)
			}
		}
		for _, n := range nodes {
			walk(n.Children)
		}
	}
	walk(g.Root)
	return routingFailures
}

// runCompact applies compaction per container level, on the X axis by default
// (dependency mode walks sequence-flow edges instead of adjacency order).
func runCompact(g *model.Graph, opts Options) {
	copts := compact.Options{Axis: compact.AxisX, MinGap: opts.CompactMinGap, Dependency: opts.CompactDependency}
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		compact.Compact(nodes, restrictEdges(g.Edges, nodes), copts)
		for _, n := range nodes {
			walk(n.Children)
		}
	}
	walk(g.Root)
}

// refine runs the constraint solver per container level as a closing
// pass: it re-asserts the leftOf/below relations the earlier stages
// already aimed for, nudging anything the heuristic passes left slightly
// short of the constraint vocabulary's required gaps. A level whose
// system fails to converge keeps the positions the solver settled on
// (the suggested initial values for anything it could not move) and is
// debug-logged; non-convergence never fails the pipeline.
func refine(g *model.Graph, opts Options) {
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		if len(nodes) > 1 {
			refineLevel(nodes, g.Edges, g.Lanes, opts)
		}
		for _, n := range nodes {
			walk(n.Children)
		}
	}
	walk(g.Root)
}

func refineLevel(nodes []*model.Node, allEdges []*model.Edge, lanes map[string][]string, opts Options) {
	solver := constraint.New()
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		solver.AddNode(n)
		present[n.ID] = true
	}

	boundaryTargets := make(map[string]string)
	for _, n := range nodes {
		for _, be := range n.BoundaryEvents {
			for _, e := range allEdges {
				if e.Source == be.ID && present[e.Target] {
					boundaryTargets[n.ID] = e.Target
					break
				}
			}
		}
	}

	// lanes is the graph-wide map; entries naming ids outside this level's
	// node set resolve to unregistered variables, which Violation/Apply
	// treat as no-ops, so passing it unfiltered is safe.
	cons := constraint.GenerateBpmnConstraints(nodes, restrictEdges(allEdges, nodes), boundaryTargets, lanes, opts.HorizontalGap, opts.VerticalGap)
	for _, c := range cons {
		solver.AddConstraint(c)
	}
	if !solver.Solve() {
		log.Default().Debug(bpmnerrors.New(bpmnerrors.ErrCodeUnsatisfiableConstraints, "constraint refinement did not converge; keeping heuristic positions").Error())
	}
}
