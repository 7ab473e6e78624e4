// Package elkio provides JSON import and export for the layout pipeline's
// input format, the ELK-BPMN Extended Schema v2.0.
//
// # Overview
//
// The schema is ELK's (Eclipse Layout Kernel) hierarchical node/edge JSON,
// extended with a `bpmn.type` tag on every node and edge and BPMN-specific
// attributes (default flows, condition expressions, boundary events,
// ioSpecification refs). The root object carries `id`, `layoutOptions`
// (an algorithm-default record this package reads but does not act on —
// the pipeline's own stages supersede it), a `children` tree (a
// collaboration of participants or a bare process), and optional
// `messages`/`signals`/`errors`/`escalations` catalogs referenced by id
// from event definitions.
//
// # Node Fields
//
// Required: id, bpmn.type. Optional: width/height (defaults applied by
// model.ApplyDefaultSizes when absent), children (nested containers),
// edges (sequence flows scoped to this container; message flows are only
// ever found at the root collaboration level), boundaryEvents, labels,
// isExpanded, isInterrupting, eventDefinitionKind, gatewayDirection,
// default, conditionExpression, timerDefinition, dataInputRefs,
// dataOutputRefs.
//
// # Import
//
// Use [Decode] to read a graph from any io.Reader, or [ImportFile] for a
// file path:
//
//	g, err := elkio.ImportFile("process.json")
//
// Decode returns the hierarchical *model.Graph the layout pipeline
// consumes directly; it performs no validation itself (model.Validate is
// the orchestrator's job, run as the pipeline's first stage).
//
// # Export
//
// Use [Encode] to write a *model.Graph back to the same schema, or
// [ExportFile] for a file path. Outside this package they are only used
// by tests; neither pkg/cache nor the debug CLI calls them.
package elkio
