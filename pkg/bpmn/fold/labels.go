package fold

import "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"

const (
	eventLabelGap   = 4.0
	gatewayLabelGap = 4.0
	lineHeight      = 14.0
	asciiCharWidth  = 7.0
	cjkCharWidth    = 14.0
	defaultLabelW   = 80.0
)

// EstimateLabelSize returns the box a label needs to render text wrapped
// to maxWidth, counting CJK characters as 14px wide and everything else
// as 7px, the way gateway labels are sized above the diamond.
func EstimateLabelSize(text string, maxWidth float64) (width, height float64) {
	if text == "" {
		return maxWidth, lineHeight
	}
	if maxWidth <= 0 {
		maxWidth = defaultLabelW
	}
	lines := 1
	cur := 0.0
	for _, r := range text {
		w := asciiCharWidth
		if isCJK(r) {
			w = cjkCharWidth
		}
		if cur+w > maxWidth && cur > 0 {
			lines++
			cur = 0
		}
		cur += w
	}
	return maxWidth, float64(lines) * lineHeight
}

// isCJK reports whether r falls in a CJK unicode block, for the purposes
// of the label-wrapping width heuristic.
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3040 && r <= 0x30FF: // Hiragana/Katakana
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	default:
		return false
	}
}

// placeNodeLabel positions n's label in abs's frame by kind: events
// center below the shape, gateways center above the diamond, everything
// else keeps its ELK-supplied local label box translated by the same
// offset already folded into abs.
func placeNodeLabel(n *model.Node, abs model.Bounds) *ShapeLabel {
	if n.Label.Text == "" && !n.Label.Set {
		return nil
	}
	switch {
	case n.Kind.IsEvent():
		w, h := EstimateLabelSize(n.Label.Text, maxFloat(abs.Width*2, defaultLabelW))
		return &ShapeLabel{
			Text: n.Label.Text,
			Bounds: model.Bounds{
				X: abs.Center().X - w/2, Y: abs.Bottom() + eventLabelGap, Width: w, Height: h,
			},
		}
	case n.Kind.IsGateway():
		w, h := EstimateLabelSize(n.Label.Text, maxFloat(abs.Width*2, defaultLabelW))
		return &ShapeLabel{
			Text: n.Label.Text,
			Bounds: model.Bounds{
				X: abs.Center().X - w/2, Y: abs.Y - gatewayLabelGap - h, Width: w, Height: h,
			},
		}
	default:
		if !n.Label.Set {
			return nil
		}
		// n.Label.Bounds was supplied in local coordinates by the upstream
		// layout collaborator; abs already folded n's own offset, so the
		// label shares the delta between n's local and absolute origin.
		dx, dy := abs.X-n.Bounds.X, abs.Y-n.Bounds.Y
		return &ShapeLabel{
			Text: n.Label.Text,
			Bounds: model.Bounds{
				X: n.Label.Bounds.X + dx, Y: n.Label.Bounds.Y + dy,
				Width: n.Label.Bounds.Width, Height: n.Label.Bounds.Height,
			},
		}
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// placeEdgeLabel takes the segment longestMiddleSegment picks (which
// leaves out the first and last segments but does not measure distance to
// the endpoint nodes), gives up if it is shorter than 30px, and otherwise
// offsets a label box from its
// midpoint: above for a horizontal segment, to the right for a vertical
// one. If that position collides with a node or an already-placed label,
// it tries the opposite side, and for long vertical segments walks
// several ratios along the segment looking for a clear spot.
func placeEdgeLabel(text string, pts []model.Point, nodeBounds []model.Bounds, placed *[]model.Bounds) *ShapeLabel {
	seg := longestMiddleSegment(pts)
	if seg.len < 30 {
		return nil
	}
	w, h := EstimateLabelSize(text, defaultLabelW)

	ratios := []float64{0.5}
	if seg.vertical && seg.len > 120 {
		ratios = []float64{0.5, 0.25, 0.75}
	}

	for _, ratio := range ratios {
		p := pointAt(seg, ratio)
		for _, trySide := range []int{1, -1} {
			box := candidateBox(p, seg.vertical, w, h, trySide)
			if !overlapsAny(box, nodeBounds) && !overlapsAny(box, *placed) {
				*placed = append(*placed, box)
				return &ShapeLabel{Text: text, Bounds: box}
			}
		}
	}

	// Nothing clear; place at the default midpoint anyway rather than
	// drop the label.
	p := pointAt(seg, 0.5)
	box := candidateBox(p, seg.vertical, w, h, 1)
	*placed = append(*placed, box)
	return &ShapeLabel{Text: text, Bounds: box}
}

type segment struct {
	a, b     model.Point
	len      float64
	vertical bool
}

// longestMiddleSegment returns the longest segment among pts[1:len-2]
// (excluding the first and last, which sit against the endpoint nodes),
// falling back to the longer of the segments available when the path has
// only one or two.
func longestMiddleSegment(pts []model.Point) segment {
	if len(pts) < 2 {
		return segment{}
	}
	if len(pts) == 2 {
		return segFrom(pts[0], pts[1])
	}
	lo, hi := 1, len(pts)-1
	if hi-lo >= 2 {
		lo, hi = 1, len(pts)-2
	}
	best := segFrom(pts[lo], pts[lo+1])
	if len(pts) == 3 {
		best = segFrom(pts[0], pts[1])
	}
	for i := lo; i < hi; i++ {
		s := segFrom(pts[i], pts[i+1])
		if s.len > best.len {
			best = s
		}
	}
	return best
}

func segFrom(a, b model.Point) segment {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := dx
	if length < 0 {
		length = -length
	}
	vertical := dy != 0 && dx == 0
	if vertical {
		length = dy
		if length < 0 {
			length = -length
		}
	}
	return segment{a: a, b: b, len: length, vertical: vertical}
}

func pointAt(s segment, ratio float64) model.Point {
	return model.Point{X: s.a.X + (s.b.X-s.a.X)*ratio, Y: s.a.Y + (s.b.Y-s.a.Y)*ratio}
}

// candidateBox returns a label box anchored near p: 5px above for a
// horizontal segment, 5px to the right for a vertical one; side flips the
// offset to the opposite direction when the preferred side collides.
func candidateBox(p model.Point, vertical bool, w, h float64, side int) model.Bounds {
	const gap = 5.0
	if vertical {
		x := p.X + float64(side)*gap
		if side < 0 {
			x = p.X + float64(side)*gap - w
		}
		return model.Bounds{X: x, Y: p.Y - h/2, Width: w, Height: h}
	}
	y := p.Y - float64(side)*gap - h
	if side < 0 {
		y = p.Y + gap
	}
	return model.Bounds{X: p.X - w/2, Y: y, Width: w, Height: h}
}

func overlapsAny(box model.Bounds, others []model.Bounds) bool {
	for _, o := range others {
		if box.X < o.Right() && box.Right() > o.X && box.Y < o.Bottom() && box.Bottom() > o.Y {
			return true
		}
	}
	return false
}
