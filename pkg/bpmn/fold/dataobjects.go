package fold

import "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"

const (
	dataObjectWidth  = 36.0
	dataObjectHeight = 50.0
	dataObjectGapX   = 20.0
	dataObjectStackY = 24.0
)

// placeDataObjects builds the auxiliary shapes and dashed association
// edges an ioSpecification task needs: data inputs stack at the task's
// left-below, data outputs at its right-below, 24px apart vertically, and
// only the topmost of each stack gets an association edge back to the
// host.
func placeDataObjects(n *model.Node, abs model.Bounds, idx map[string]*model.Node) ([]Shape, []EdgeDI) {
	var shapes []Shape
	var edges []EdgeDI

	// The stacks hang from the host's visible bottom; a host whose layout
	// box was grown to reserve room for them keeps its smaller
	// VisualHeight as the visible box.
	visible := abs
	if n.VisualHeight > 0 && n.VisualHeight < abs.Height {
		visible.Height = n.VisualHeight
	}

	shapes, edges = appendStack(shapes, edges, n, visible, n.DataInputs, abs.X-dataObjectWidth-dataObjectGapX, idx, true)
	shapes, edges = appendStack(shapes, edges, n, visible, n.DataOutputs, abs.Right()+dataObjectGapX, idx, false)

	return shapes, edges
}

func appendStack(shapes []Shape, edges []EdgeDI, host *model.Node, hostAbs model.Bounds, ids []string, x float64, idx map[string]*model.Node, isInput bool) ([]Shape, []EdgeDI) {
	for i, id := range ids {
		dn := idx[id]
		kind := model.KindDataObject
		if dn != nil {
			kind = dn.Kind
		}
		box := model.Bounds{
			X:      x,
			Y:      hostAbs.Bottom() + float64(i)*(dataObjectHeight+dataObjectStackY),
			Width:  dataObjectWidth,
			Height: dataObjectHeight,
		}
		shapes = append(shapes, Shape{ID: id, Kind: kind, Bounds: box})

		if i == 0 {
			assocKind := model.EdgeDataInputAssociation
			if !isInput {
				assocKind = model.EdgeDataOutputAssociation
			}
			// Input associations flow data object -> host; outputs the
			// reverse.
			edges = append(edges, EdgeDI{
				ID:   host.ID + "_assoc_" + id,
				Kind: assocKind,
				Sections: []model.Section{{
					Start: associationPoint(hostAbs, box, isInput, !isInput),
					End:   associationPoint(hostAbs, box, isInput, isInput),
				}},
			})
		}
	}
	return shapes, edges
}

// associationPoint picks the connection point on the host or the data
// object for the stack's topmost association edge, atHost selecting
// which endpoint.
func associationPoint(hostAbs, dataAbs model.Bounds, isInput, atHost bool) model.Point {
	if isInput {
		if atHost {
			return model.Point{X: hostAbs.X, Y: hostAbs.Center().Y}
		}
		return model.Point{X: dataAbs.Right(), Y: dataAbs.Center().Y}
	}
	if atHost {
		return model.Point{X: hostAbs.Right(), Y: hostAbs.Center().Y}
	}
	return model.Point{X: dataAbs.X, Y: dataAbs.Center().Y}
}
