// Package debugviz renders a pre-fold graph (or any intermediate pipeline
// stage's model.Graph) as a Graphviz diagram, for inspecting the seed
// layering, boundary-event placement, or normalization passes without
// going all the way to BPMN XML. It is wired into the debug CLI command
// and is not part of the pipeline's own output path.
//
// ToDOT renders a schematic view: one box per node, shaped by BPMN kind,
// laid out left-to-right since that is the pipeline's layering direction.
// It ignores the nodes' actual Bounds.X/Y — this is a structural view of
// the graph, not a preview of the final geometry.
package debugviz
