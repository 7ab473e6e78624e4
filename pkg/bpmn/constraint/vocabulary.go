package constraint

import "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"

// alignConstraint pulls a set of variables on one axis toward their mean.
type alignConstraint struct {
	ids      []string
	axis     Axis
	strength Strength
}

// AlignX constrains every node in ids to share the same X.
func AlignX(ids []string) Constraint { return &alignConstraint{ids: ids, axis: AxisX, strength: Strong} }

// AlignY constrains every node in ids to share the same Y.
func AlignY(ids []string) Constraint { return &alignConstraint{ids: ids, axis: AxisY, strength: Strong} }

func (c *alignConstraint) Strength() Strength { return c.strength }

func (c *alignConstraint) vars(s *Solver) []*variable {
	table := s.x
	if c.axis == AxisY {
		table = s.y
	}
	out := make([]*variable, 0, len(c.ids))
	for _, id := range c.ids {
		if v, ok := table[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (c *alignConstraint) Violation(s *Solver) float64 {
	vars := c.vars(s)
	if len(vars) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range vars {
		mean += v.value
	}
	mean /= float64(len(vars))
	maxDiff := 0.0
	for _, v := range vars {
		d := v.value - mean
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

func (c *alignConstraint) Apply(s *Solver, delta float64) {
	vars := c.vars(s)
	if len(vars) < 2 {
		return
	}
	mean := 0.0
	for _, v := range vars {
		mean += v.value
	}
	mean /= float64(len(vars))
	for _, v := range vars {
		v.value += (mean - v.value) * 0.5
	}
}

// relConstraint models leftOf/rightOf/above/below: a one-sided inequality
// `reference.<axis> - node.<axis> >= node.<size> + minGap` (leftOf/above)
// or the symmetric form (rightOf/below).
type relConstraint struct {
	node, reference string
	axis            Axis
	minGap          float64
	// nodeIsLeftOrAbove is true for leftOf/above (node must be smaller),
	// false for rightOf/below (reference must be smaller).
	nodeIsLeftOrAbove bool
	strength          Strength
}

func LeftOf(node, reference string, minGap float64) Constraint {
	return &relConstraint{node: node, reference: reference, axis: AxisX, minGap: minGap, nodeIsLeftOrAbove: true, strength: Strong}
}

func RightOf(node, reference string, minGap float64) Constraint {
	return &relConstraint{node: node, reference: reference, axis: AxisX, minGap: minGap, nodeIsLeftOrAbove: false, strength: Strong}
}

func Above(node, reference string, minGap float64) Constraint {
	return &relConstraint{node: node, reference: reference, axis: AxisY, minGap: minGap, nodeIsLeftOrAbove: true, strength: Strong}
}

func Below(node, reference string, minGap float64) Constraint {
	return &relConstraint{node: node, reference: reference, axis: AxisY, minGap: minGap, nodeIsLeftOrAbove: false, strength: Strong}
}

// BelowRequired builds a Below constraint at Required strength, used for
// boundary-event targets and sibling lanes.
func BelowRequired(node, reference string, minGap float64) Constraint {
	c := Below(node, reference, minGap).(*relConstraint)
	c.strength = Required
	return c
}

func (c *relConstraint) Strength() Strength { return c.strength }

func (c *relConstraint) vars(s *Solver) (node, ref *variable, ok bool) {
	table := s.x
	if c.axis == AxisY {
		table = s.y
	}
	node, ok1 := table[c.node]
	ref, ok2 := table[c.reference]
	return node, ref, ok1 && ok2
}

// requiredGap returns node.<size> + minGap (leftOf/above) or
// reference.<size> + minGap (rightOf/below).
func (c *relConstraint) requiredGap(node, ref *variable) float64 {
	if c.nodeIsLeftOrAbove {
		return node.width + c.minGap
	}
	return ref.width + c.minGap
}

func (c *relConstraint) Violation(s *Solver) float64 {
	node, ref, ok := c.vars(s)
	if !ok {
		return 0
	}
	gap := c.requiredGap(node, ref)
	var actual float64
	if c.nodeIsLeftOrAbove {
		actual = ref.value - node.value
	} else {
		actual = node.value - ref.value
	}
	if actual >= gap {
		return 0
	}
	return gap - actual
}

func (c *relConstraint) Apply(s *Solver, delta float64) {
	node, ref, ok := c.vars(s)
	if !ok {
		return
	}
	half := delta / 2
	if c.nodeIsLeftOrAbove {
		node.value -= half
		ref.value += half
	} else {
		node.value += half
		ref.value -= half
	}
}

// fixedConstraint pins a node's axis to an exact value.
type fixedConstraint struct {
	node  string
	axis  Axis
	value float64
}

func FixedX(node string, x float64) Constraint { return &fixedConstraint{node: node, axis: AxisX, value: x} }
func FixedY(node string, y float64) Constraint { return &fixedConstraint{node: node, axis: AxisY, value: y} }

func (c *fixedConstraint) Strength() Strength { return Required }

func (c *fixedConstraint) variable(s *Solver) *variable {
	table := s.x
	if c.axis == AxisY {
		table = s.y
	}
	return table[c.node]
}

func (c *fixedConstraint) Violation(s *Solver) float64 {
	v := c.variable(s)
	if v == nil {
		return 0
	}
	return c.value - v.value
}

func (c *fixedConstraint) Apply(s *Solver, delta float64) {
	if v := c.variable(s); v != nil {
		v.value += delta
	}
}

// inContainerConstraint constrains a node's AABB to lie within container's
// AABB, minus padding on every side — four inequalities collapsed into one
// Constraint for bookkeeping convenience.
type inContainerConstraint struct {
	node, container string
	padding         float64
}

func InContainer(node, container string, padding float64) Constraint {
	return &inContainerConstraint{node: node, container: container, padding: padding}
}

func (c *inContainerConstraint) Strength() Strength { return Strong }

func (c *inContainerConstraint) Violation(s *Solver) float64 {
	nx, cx, ok1 := s.x[c.node], s.x[c.container], s.x[c.container] != nil
	ny, cy, ok2 := s.y[c.node], s.y[c.container], s.y[c.container] != nil
	if !ok1 || !ok2 || s.x[c.node] == nil {
		return 0
	}
	var worst float64
	check := func(v float64) {
		if v > 0 && v > worst {
			worst = v
		}
	}
	check(cx.value + c.padding - nx.value)
	check(nx.value + nx.width - (cx.value + cx.width - c.padding))
	check(cy.value + c.padding - ny.value)
	check(ny.value + ny.width - (cy.value + cy.width - c.padding))
	return worst
}

func (c *inContainerConstraint) Apply(s *Solver, delta float64) {
	nx, cx := s.x[c.node], s.x[c.container]
	ny, cy := s.y[c.node], s.y[c.container]
	if nx == nil || cx == nil || ny == nil || cy == nil {
		return
	}
	minX := cx.value + c.padding
	maxX := cx.value + cx.width - c.padding - nx.width
	if nx.value < minX {
		nx.value += (minX - nx.value) * 0.5
	} else if nx.value > maxX {
		nx.value -= (nx.value - maxX) * 0.5
	}
	minY := cy.value + c.padding
	maxY := cy.value + cy.width - c.padding - ny.width
	if ny.value < minY {
		ny.value += (minY - ny.value) * 0.5
	} else if ny.value > maxY {
		ny.value -= (ny.value - maxY) * 0.5
	}
}

// minDistanceConstraint is a one-sided inequality preferring node2 to sit
// on the positive side of node1 by at least minDistance. Disjunctive
// (absolute value) relations are intentionally not modeled, matching the
// solver's design note that noOverlap must be lowered to an ordering
// choice by the caller.
type minDistanceConstraint struct {
	node1, node2 string
	axis         Axis
	minDistance  float64
}

func MinDistance(node1, node2 string, axis Axis, minDistance float64) Constraint {
	return &minDistanceConstraint{node1: node1, node2: node2, axis: axis, minDistance: minDistance}
}

func (c *minDistanceConstraint) Strength() Strength { return Medium }

func (c *minDistanceConstraint) vars(s *Solver) (a, b *variable, ok bool) {
	table := s.x
	if c.axis == AxisY {
		table = s.y
	}
	a, ok1 := table[c.node1]
	b, ok2 := table[c.node2]
	return a, b, ok1 && ok2
}

func (c *minDistanceConstraint) Violation(s *Solver) float64 {
	a, b, ok := c.vars(s)
	if !ok {
		return 0
	}
	actual := b.value - a.value
	if actual >= c.minDistance {
		return 0
	}
	return c.minDistance - actual
}

func (c *minDistanceConstraint) Apply(s *Solver, delta float64) {
	_, b, ok := c.vars(s)
	if !ok {
		return
	}
	b.value += delta
}

// GenerateBpmnConstraints emits the pipeline's canonical constraint set:
// leftOf for each sequence-flow source->target, required below
// for each boundary-event target under its host, and required below with
// zero gap for sibling lanes.
func GenerateBpmnConstraints(nodes []*model.Node, edges []*model.Edge, boundaryTargets map[string]string, lanes map[string][]string, horizontalGap, boundaryEventGap float64) []Constraint {
	var cons []Constraint

	for _, e := range edges {
		if e.Kind == model.EdgeSequenceFlow {
			cons = append(cons, LeftOf(e.Source, e.Target, horizontalGap))
		}
	}

	for hostID, targetID := range boundaryTargets {
		cons = append(cons, BelowRequired(targetID, hostID, boundaryEventGap))
	}

	for _, siblingIDs := range lanes {
		for i := 1; i < len(siblingIDs); i++ {
			cons = append(cons, BelowRequired(siblingIDs[i], siblingIDs[i-1], 0))
		}
	}

	return cons
}
