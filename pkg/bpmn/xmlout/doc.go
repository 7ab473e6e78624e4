// Package xmlout serializes a laid-out graph into BPMN 2.0 XML: the
// semantic process/collaboration tree plus the BPMNDI diagram interchange
// layer the pipeline's coordinate folder (pkg/bpmn/fold) produced.
//
// Render walks model.Graph's hierarchy to emit the semantic elements
// (bpmn:process, bpmn:task, bpmn:sequenceFlow, and so on) and walks
// fold.Diagram's flat shape/edge lists to emit the matching
// bpmndi:BPMNShape/BPMNEdge records, each carrying the dc:Bounds or
// di:waypoint geometry the pipeline computed. The two halves share
// element ids (a node's semantic id is also its BPMNShape's bpmnElement
// reference) so a consumer can cross-reference either way.
//
// The writer is hand-built with a bytes.Buffer rather than
// encoding/xml, the same way the rest of this module's visual output
// formats are assembled: it keeps full control over attribute order and
// namespace prefixes, which BPMN-consuming tools are often fussy about.
package xmlout
