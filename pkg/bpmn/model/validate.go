package model

import (
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors"
)

// Validate enforces the graph's structural invariants before any layout
// stage runs. It returns the first violation found, coded so the caller can
// distinguish invalid-input sub-cases.
func Validate(g *Graph) error {
	if len(g.Root) == 0 {
		return bpmnerrors.New(bpmnerrors.ErrCodeMissingChildren, "graph %q has no children", g.ID)
	}

	ids := make(map[string]bool)
	var boundaryHosts = make(map[string]bool)

	var walk func(nodes []*Node) error
	walk = func(nodes []*Node) error {
		for _, n := range nodes {
			if n.ID == "" {
				return bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "node missing id")
			}
			if err := bpmnerrors.ValidateElementID(n.ID); err != nil {
				return err
			}
			if ids[n.ID] {
				return bpmnerrors.New(bpmnerrors.ErrCodeDuplicateID, "duplicate node id %q", n.ID)
			}
			ids[n.ID] = true

			if n.Kind == "" {
				return bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "node %q missing bpmn.type", n.ID)
			}

			for _, be := range n.BoundaryEvents {
				if be.ID == "" {
					return bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "boundary event on host %q missing id", n.ID)
				}
				if ids[be.ID] {
					return bpmnerrors.New(bpmnerrors.ErrCodeDuplicateID, "duplicate node id %q", be.ID)
				}
				ids[be.ID] = true
				if be.AttachedToRef != n.ID {
					return bpmnerrors.New(bpmnerrors.ErrCodeCyclicBoundaryAttach,
						"boundary event %q attachedToRef %q does not match its host %q", be.ID, be.AttachedToRef, n.ID)
				}
				boundaryHosts[be.ID] = true
			}

			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(g.Root); err != nil {
		return err
	}

	for _, e := range g.Edges {
		if e.ID == "" {
			return bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute, "edge missing id")
		}
		if !ids[e.Source] && !boundaryHosts[e.Source] {
			return bpmnerrors.New(bpmnerrors.ErrCodeDanglingReference, "edge %q source %q is not a known node", e.ID, e.Source)
		}
		if !ids[e.Target] {
			return bpmnerrors.New(bpmnerrors.ErrCodeDanglingReference, "edge %q target %q is not a known node", e.ID, e.Target)
		}
	}

	if err := validateStartEndEvents(g); err != nil {
		return err
	}
	if err := validateDivergingGateways(g); err != nil {
		return err
	}
	return validateFlowScopes(g)
}

// validateFlowScopes enforces the pool-scoping rules: sequence flows stay
// within a single pool (or the top-level process), message flows connect
// nodes in two distinct pools.
func validateFlowScopes(g *Graph) error {
	poolOf := make(map[string]string)
	for _, root := range g.Root {
		if root.Kind != KindParticipant {
			continue
		}
		var mark func(n *Node)
		mark = func(n *Node) {
			poolOf[n.ID] = root.ID
			for _, be := range n.BoundaryEvents {
				poolOf[be.ID] = root.ID
			}
			for _, c := range n.Children {
				mark(c)
			}
		}
		mark(root)
	}

	for _, e := range g.Edges {
		switch e.Kind {
		case EdgeSequenceFlow:
			if poolOf[e.Source] != poolOf[e.Target] {
				return bpmnerrors.New(bpmnerrors.ErrCodeCrossPoolSequenceFlow,
					"sequence flow %q crosses from pool %q to pool %q", e.ID, poolOf[e.Source], poolOf[e.Target])
			}
		case EdgeMessageFlow:
			if poolOf[e.Source] == "" || poolOf[e.Target] == "" || poolOf[e.Source] == poolOf[e.Target] {
				return bpmnerrors.New(bpmnerrors.ErrCodeInvalidInput,
					"message flow %q must connect nodes in two distinct pools", e.ID)
			}
		}
	}
	return nil
}

// validateStartEndEvents enforces "start events have no incoming; end
// events have no outgoing".
func validateStartEndEvents(g *Graph) error {
	hasIncoming := make(map[string]bool)
	hasOutgoing := make(map[string]bool)
	for _, e := range g.Edges {
		hasOutgoing[e.Source] = true
		hasIncoming[e.Target] = true
	}

	var err error
	g.Walk(func(n *Node) {
		if err != nil {
			return
		}
		switch n.Kind {
		case KindStartEvent:
			if hasIncoming[n.ID] {
				err = bpmnerrors.New(bpmnerrors.ErrCodeInvalidInput, "start event %q has incoming flow", n.ID)
			}
		case KindEndEvent:
			if hasOutgoing[n.ID] {
				err = bpmnerrors.New(bpmnerrors.ErrCodeInvalidInput, "end event %q has outgoing flow", n.ID)
			}
		}
	})
	return err
}

// validateDivergingGateways enforces the default/condition rule: exclusive
// and inclusive diverging gateways (>=2 outgoing) carry exactly one default
// outgoing, and every non-default outgoing carries a condition expression.
func validateDivergingGateways(g *Graph) error {
	outgoing := make(map[string][]*Edge)
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	var err error
	g.Walk(func(n *Node) {
		if err != nil {
			return
		}
		if n.Kind != KindExclusiveGateway && n.Kind != KindInclusiveGateway {
			return
		}
		out := outgoing[n.ID]
		if len(out) < 2 {
			return
		}
		if n.DefaultOutgoing == "" {
			err = bpmnerrors.New(bpmnerrors.ErrCodeMissingDefaultFlow,
				"diverging gateway %q has %d outgoing flows but no default", n.ID, len(out))
			return
		}
		foundDefault := false
		for _, e := range out {
			if e.ID == n.DefaultOutgoing {
				foundDefault = true
				continue
			}
			if e.ConditionExpression == "" {
				err = bpmnerrors.New(bpmnerrors.ErrCodeMissingAttribute,
					"non-default outgoing %q of gateway %q is missing a condition expression", e.ID, n.ID)
				return
			}
		}
		if !foundDefault {
			err = bpmnerrors.New(bpmnerrors.ErrCodeMissingDefaultFlow,
				"gateway %q default outgoing %q is not among its outgoing flows", n.ID, n.DefaultOutgoing)
		}
	})
	return err
}

// IsOffsettingContainer reports whether n offsets its children's local
// coordinates into its own frame: a participant, a lane, an expanded
// subprocess, or — the one exception to Kind.IsContainer — a process node
// whose parent (as passed in) is a participant.
func IsOffsettingContainer(n *Node, parent *Node) bool {
	if n.Kind.IsContainer() {
		if n.Kind == KindSubProcess {
			return n.IsExpanded
		}
		return true
	}
	if n.Kind == KindProcess && parent != nil && parent.Kind == KindParticipant {
		return true
	}
	return false
}
