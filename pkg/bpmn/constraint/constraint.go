// Package constraint implements a Cassowary-style linear constraint
// solver over node X/Y position variables.
//
// There is no off-the-shelf Cassowary implementation in the dependency
// ecosystem used elsewhere in this repository, so the solver here is a
// small iterative relaxation method: each constraint contributes a
// violation gradient weighted by its strength, and Solve repeatedly nudges
// variables toward feasibility until the system stabilizes or the
// iteration budget is spent. required constraints are enforced last and
// exactly, clamping any residual violation, so a required constraint can
// never be overridden by a softer one. Most constraints move their
// variables by the violation scaled by their strength's weight; the align
// and in-container constraints instead move theirs halfway toward the
// target on every application, whatever their strength.
package constraint

import (
	"math"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// Strength orders how strongly a constraint should be honored when the
// system is over-determined.
type Strength int

const (
	Weak Strength = iota
	Medium
	Strong
	Required
)

// weight converts a Strength into the relaxation step's gradient multiplier.
func (s Strength) weight() float64 {
	switch s {
	case Required:
		return 1.0
	case Strong:
		return 0.6
	case Medium:
		return 0.3
	default:
		return 0.1
	}
}

// Axis names which variable a constraint operates on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// variable is a solver-internal register for one node's X or one node's Y.
type variable struct {
	nodeID string
	value  float64
	width  float64 // the node's width (for X) or height (for Y)
	fixed  bool
}

// Constraint is satisfied when Violation returns 0; Apply moves the
// touched variables to reduce the violation.
type Constraint interface {
	Strength() Strength
	// Violation returns how far the constraint is from being satisfied.
	// 0 means satisfied; inequalities return 0 when already satisfied in
	// the preferred direction.
	Violation(s *Solver) float64
	// Apply nudges the touched variables toward satisfaction; Solve passes
	// delta as the violation already scaled by the strength's weight.
	Apply(s *Solver, delta float64)
}

// Solver holds registered node variables and the accumulated constraint
// set. The zero value is not usable; use New.
type Solver struct {
	nodes map[string]*model.Node
	x     map[string]*variable
	y     map[string]*variable
	cons  []Constraint

	solved bool
}

// New creates an empty solver.
func New() *Solver {
	return &Solver{
		nodes: make(map[string]*model.Node),
		x:     make(map[string]*variable),
		y:     make(map[string]*variable),
	}
}

// AddNode registers a node's X/Y as edit variables, suggesting its current
// bounds as the initial value.
func (s *Solver) AddNode(n *model.Node) {
	s.nodes[n.ID] = n
	s.x[n.ID] = &variable{nodeID: n.ID, value: n.Bounds.X, width: n.Bounds.Width}
	s.y[n.ID] = &variable{nodeID: n.ID, value: n.Bounds.Y, width: n.Bounds.Height}
}

// HasNode reports whether id has been registered.
func (s *Solver) HasNode(id string) bool {
	_, ok := s.x[id]
	return ok
}

// AddConstraint appends c to the system. AddNode must have been called for
// every node the constraint references.
func (s *Solver) AddConstraint(c Constraint) {
	s.cons = append(s.cons, c)
	s.solved = false
}

// X returns the current (possibly unsolved) value of node id's X variable.
func (s *Solver) X(id string) float64 {
	if v, ok := s.x[id]; ok {
		return v.value
	}
	return 0
}

// Y returns the current value of node id's Y variable.
func (s *Solver) Y(id string) float64 {
	if v, ok := s.y[id]; ok {
		return v.value
	}
	return 0
}

// UnknownNodeRefs returns the ids any constraint references that were
// never registered via AddNode, so the caller can report them instead of
// solving against a partial system.
func (s *Solver) UnknownNodeRefs(ids []string) []string {
	var missing []string
	for _, id := range ids {
		if !s.HasNode(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

const (
	maxIterations  = 200
	convergenceEps = 0.01
)

// Solve runs the iterative relaxation and writes results back into the
// registered nodes' Bounds.X/Y. It returns false if the system failed to
// converge within the iteration budget (UnsatisfiableConstraints); the
// solver leaves the best values found, which match the initial suggested
// positions for any variable no feasible constraint could move.
func (s *Solver) Solve() bool {
	if s.solved {
		return true
	}
	converged := false
	for iter := 0; iter < maxIterations; iter++ {
		maxViolation := 0.0
		for _, c := range s.cons {
			v := c.Violation(s)
			if v == 0 {
				continue
			}
			if math.Abs(v) > maxViolation {
				maxViolation = math.Abs(v)
			}
			c.Apply(s, v*c.Strength().weight())
		}
		if maxViolation < convergenceEps {
			converged = true
			break
		}
	}
	// A final required-only pass clamps any residual violation exactly,
	// since required constraints must never be left unsatisfied by a
	// softer constraint's pull.
	for pass := 0; pass < 3; pass++ {
		clean := true
		for _, c := range s.cons {
			if c.Strength() != Required {
				continue
			}
			v := c.Violation(s)
			if v != 0 {
				clean = false
				c.Apply(s, v)
			}
		}
		if clean {
			break
		}
	}

	for id, n := range s.nodes {
		n.Bounds.X = s.x[id].value
		n.Bounds.Y = s.y[id].value
	}
	s.solved = true
	return converged
}

// Clear resets solved state so a subsequent Solve recomputes from the
// current suggested values; the constraint set itself is unchanged.
func (s *Solver) Clear() {
	s.solved = false
}

// Suggest overrides a node's initial value on the given axis before
// solving (the solver's "suggest initial values" phase).
func (s *Solver) Suggest(nodeID string, axis Axis, value float64) {
	switch axis {
	case AxisX:
		if v, ok := s.x[nodeID]; ok {
			v.value = value
		}
	case AxisY:
		if v, ok := s.y[nodeID]; ok {
			v.value = value
		}
	}
	s.solved = false
}
