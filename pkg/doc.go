// Package pkg provides the core libraries of the bpmnlayout engine.
//
// # Overview
//
// bpmnlayout turns a position-less BPMN process graph into a fully
// positioned, orthogonally-routed BPMN 2.0 diagram. The pkg directory
// contains reusable Go libraries organized into three main areas:
//
//  1. The layout engine itself ([bpmn/model], [bpmn/geometry], [bpmn/constraint],
//     [bpmn/treelayout], [bpmn/layered], [bpmn/boundary], [bpmn/pathfind],
//     [bpmn/edgefix], [bpmn/propagate], [bpmn/normalize], [bpmn/compact],
//     [bpmn/fold], [bpmn/pipeline])
//  2. Data import/export ([bpmn/elkio], [bpmn/xmlout], [bpmn/debugviz])
//  3. Ambient infrastructure ([bpmnerrors], [cache], [session], [httputil],
//     [httpapi], [buildinfo])
//
// # Architecture
//
// The typical data flow through bpmnlayout:
//
//	ELK-BPMN Extended Schema JSON
//	         ↓
//	    [bpmn/elkio] (decode graph)
//	         ↓
//	    [bpmn/pipeline] (validate, size, layer, route, fold)
//	         ↓
//	    [bpmn/xmlout] (render BPMN 2.0 XML + DI)
//
// [bpmn/pipeline.ToBpmn] is the engine's single entry point; everything
// else in [bpmn] is a stage it calls in sequence.
//
// # Quick Start
//
//	import (
//	    "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio"
//	    "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
//	    "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/xmlout"
//	)
//
//	g, _ := elkio.ImportFile("process.json")
//	res, _ := pipeline.ToBpmn(g, pipeline.DefaultOptions())
//	xmlBytes := xmlout.Render(g, res.Diagram)
//
// # Main Packages
//
// ## Layout Engine
//
// [bpmn/model] - The graph data model: nodes, edges, bounds, and the Data
// Model validation invariants checked before layout begins.
//
// [bpmn/geometry] - Orthogonal routing primitives: bounds intersection,
// segment clearance, waypoint collapsing, diamond-gateway projection.
//
// [bpmn/constraint] - The Cassowary-style constraint solver, used as
// an optional closing refinement pass.
//
// [bpmn/treelayout] / [bpmn/layered] - Reingold-Tilford tree layout and
// row/column assignment with crossing minimization.
//
// [bpmn/boundary] - Boundary event placement around activity borders.
//
// [bpmn/pathfind] - A* edge pathfinding.
//
// [bpmn/edgefix] - Orthogonalization and waypoint cleanup after routing.
//
// [bpmn/propagate] / [bpmn/normalize] / [bpmn/compact] - Gateway flow
// propagation, main-flow normalization, and whitespace
// compaction.
//
// [bpmn/fold] - Folds the local, container-relative graph into the
// absolute-coordinate diagram BPMN DI expects.
//
// [bpmn/pipeline] - The orchestrator tying every stage together, plus
// [bpmn/pipeline.VerifyIdempotent] for checking a folded diagram's
// orthogonality and idempotence.
//
// ## Import/Export
//
// [bpmn/elkio] - Decodes/encodes the ELK-BPMN Extended Schema v2.0 JSON
// format the pipeline takes as input.
//
// [bpmn/xmlout] - Renders BPMN 2.0 process XML with a BPMNDiagram DI layer.
//
// [bpmn/debugviz] - Graphviz DOT/SVG rendering of the pre-fold layered
// graph, for diagnosing placement bugs.
//
// ## Ambient Infrastructure
//
// [bpmnerrors] - Structured, coded errors shared by the CLI, HTTP API, and
// pipeline.
//
// [cache] - Pluggable caching of computed layouts and rendered artifacts
// (file-backed or Redis-backed).
//
// [session] - Asynchronous job bookkeeping for the HTTP API (file-backed
// or MongoDB-backed).
//
// [httputil] - Shared HTTP caching and retry helpers, used by [httpapi]'s
// webhook notifier.
//
// [httpapi] - The HTTP API surface: submit a graph, poll a job, fetch a
// rendered artifact.
//
// [buildinfo] - Version information embedded at build time via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/bpmn/...             # Just the layout engine
//	go test -run Example ./pkg/...     # Examples only
//
// [bpmn/model]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model
// [bpmn/geometry]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry
// [bpmn/constraint]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/constraint
// [bpmn/treelayout]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/treelayout
// [bpmn/layered]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/layered
// [bpmn/boundary]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/boundary
// [bpmn/pathfind]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pathfind
// [bpmn/edgefix]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/edgefix
// [bpmn/propagate]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/propagate
// [bpmn/normalize]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/normalize
// [bpmn/compact]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/compact
// [bpmn/fold]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/fold
// [bpmn/pipeline]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline
// [bpmn/elkio]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio
// [bpmn/xmlout]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/xmlout
// [bpmn/debugviz]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmn/debugviz
// [bpmnerrors]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors
// [cache]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/cache
// [session]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/session
// [httputil]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/httputil
// [httpapi]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/httpapi
// [buildinfo]: https://pkg.go.dev/github.com/lcpmarvel/bpmnlayout/pkg/buildinfo
package pkg
