// Package pathfind implements a grid-based A* obstacle-avoiding
// pathfinder: the grid is built from the union bounding box of
// inflated obstacles, a start/end cell pair is forced walkable, and the
// raw cell path is simplified and orthogonalized before being handed back
// as a polyline.
//
// The search itself is A* over a container/heap priority queue with a
// Manhattan heuristic (BPMN routing never needs diagonal movement).
package pathfind

import (
	"container/heap"
	"math"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// Config tunes the grid and search.
type Config struct {
	CellSize       float64
	ObstacleMargin float64
	AllowDiagonal  bool
	GridPadding    float64
}

// DefaultConfig returns the routing defaults used across the pipeline.
func DefaultConfig() Config {
	return Config{CellSize: 10, ObstacleMargin: 5, AllowDiagonal: false, GridPadding: 50}
}

// Port names a preferred connection side for a path endpoint.
type Port = geometry.Side

// Request describes one pathfinding call. StartPort/EndPort, when set,
// name the side Start/End exit/enter on and get a short cleared lane in
// that direction (see clearLane) so the grid can't trap the search
// against the very node it's leaving; "" skips the lane and lets the
// search find its own way off the node.
type Request struct {
	Start, End model.Point
	StartPort  Port
	EndPort    Port
	Obstacles  []model.Bounds
	Config     Config
}

// Result is the computed path plus a flag reporting whether a real route
// was found.
type Result struct {
	Path    []model.Point
	Success bool
}

type cell struct{ cx, cy int }

// Find runs A* over a grid built from req.Obstacles and returns a
// collapsed, orthogonalized polyline from req.Start to req.End. If no path
// exists within the grid, Success is false and Path is a straight
// fallback segment, left for the caller to flag as a recovered routing
// failure.
func Find(req Request) Result {
	cfg := req.Config
	if cfg.CellSize <= 0 {
		cfg = DefaultConfig()
	}

	grid, minX, minY := buildGrid(req.Obstacles, req.Start, req.End, cfg)
	startCell := toCell(req.Start, minX, minY, cfg.CellSize)
	endCell := toCell(req.End, minX, minY, cfg.CellSize)
	grid[startCell] = false
	grid[endCell] = false
	clearLane(grid, startCell, req.StartPort)
	clearLane(grid, endCell, req.EndPort)

	path, ok := astar(grid, startCell, endCell, cfg.AllowDiagonal)
	if !ok {
		return Result{Path: []model.Point{req.Start, req.End}, Success: false}
	}

	pts := make([]model.Point, len(path))
	for i, c := range path {
		pts[i] = fromCell(c, minX, minY, cfg.CellSize)
	}
	pts[0] = req.Start
	pts[len(pts)-1] = req.End

	pts = geometry.CollapseCollinear(pts)
	pts = geometry.EnsureOrthogonalWaypoints(pts)
	return Result{Path: pts, Success: true}
}

// buildGrid marks every cell covered by an inflated obstacle as blocked,
// over the union AABB of obstacles plus start/end, expanded by padding.
func buildGrid(obstacles []model.Bounds, start, end model.Point, cfg Config) (map[cell]bool, float64, float64) {
	minX, minY := math.Min(start.X, end.X), math.Min(start.Y, end.Y)
	maxX, maxY := math.Max(start.X, end.X), math.Max(start.Y, end.Y)
	for _, ob := range obstacles {
		minX = math.Min(minX, ob.X)
		minY = math.Min(minY, ob.Y)
		maxX = math.Max(maxX, ob.Right())
		maxY = math.Max(maxY, ob.Bottom())
	}
	minX -= cfg.GridPadding
	minY -= cfg.GridPadding
	maxX += cfg.GridPadding
	maxY += cfg.GridPadding

	grid := make(map[cell]bool)
	for _, ob := range obstacles {
		inflated := geometry.Expand(ob, cfg.ObstacleMargin)
		x0 := int((inflated.X - minX) / cfg.CellSize)
		y0 := int((inflated.Y - minY) / cfg.CellSize)
		x1 := int((inflated.Right() - minX) / cfg.CellSize)
		y1 := int((inflated.Bottom() - minY) / cfg.CellSize)
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				grid[cell{x, y}] = true
			}
		}
	}
	return grid, minX, minY
}

// clearLane forces the few cells immediately outward of c, in the
// direction port faces, walkable. Start/End already sit on the node's
// boundary, so without this the search can find that lane blocked by the
// node's own inflated obstacle margin and never get a foothold to leave
// or enter on the requested side; an empty port leaves the grid as built.
func clearLane(grid map[cell]bool, c cell, port Port) {
	dx, dy := portDirection(port)
	if dx == 0 && dy == 0 {
		return
	}
	const laneCells = 3
	for i := 1; i <= laneCells; i++ {
		grid[cell{cx: c.cx + dx*i, cy: c.cy + dy*i}] = false
	}
}

func portDirection(port Port) (int, int) {
	switch port {
	case geometry.SideTop:
		return 0, -1
	case geometry.SideBottom:
		return 0, 1
	case geometry.SideLeft:
		return -1, 0
	case geometry.SideRight:
		return 1, 0
	default:
		return 0, 0
	}
}

func toCell(p model.Point, minX, minY, cellSize float64) cell {
	return cell{cx: int(math.Round((p.X - minX) / cellSize)), cy: int(math.Round((p.Y - minY) / cellSize))}
}

func fromCell(c cell, minX, minY, cellSize float64) model.Point {
	return model.Point{X: minX + float64(c.cx)*cellSize, Y: minY + float64(c.cy)*cellSize}
}

func manhattan(a, b cell) float64 {
	return math.Abs(float64(a.cx-b.cx)) + math.Abs(float64(a.cy-b.cy))
}

// openItem is one entry in the A* priority queue.
type openItem struct {
	c        cell
	priority float64
	index    int
}

type openQueue []*openItem

func (q openQueue) Len() int            { return len(q) }
func (q openQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q openQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index, q[j].index = i, j }
func (q *openQueue) Push(x any)         { it := x.(*openItem); it.index = len(*q); *q = append(*q, it) }
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// astar runs grid A* from start to end; blocked reports which cells are
// obstacles. Returns the cell path and whether one was found.
func astar(blocked map[cell]bool, start, end cell, allowDiagonal bool) ([]cell, bool) {
	dirs := []cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	if allowDiagonal {
		dirs = append(dirs, cell{1, 1}, cell{1, -1}, cell{-1, 1}, cell{-1, -1})
	}

	gScore := map[cell]float64{start: 0}
	cameFrom := map[cell]cell{}
	visited := map[cell]bool{}

	pq := &openQueue{{c: start, priority: manhattan(start, end)}}
	heap.Init(pq)

	const maxExpansions = 200000
	expansions := 0

	for pq.Len() > 0 {
		expansions++
		if expansions > maxExpansions {
			return nil, false
		}
		cur := heap.Pop(pq).(*openItem).c
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == end {
			return reconstruct(cameFrom, start, end), true
		}
		for _, d := range dirs {
			next := cell{cur.cx + d.cx, cur.cy + d.cy}
			if blocked[next] {
				continue
			}
			tentative := gScore[cur] + manhattan(cell{}, d)
			if existing, ok := gScore[next]; !ok || tentative < existing {
				gScore[next] = tentative
				cameFrom[next] = cur
				heap.Push(pq, &openItem{c: next, priority: tentative + manhattan(next, end)})
			}
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[cell]cell, start, end cell) []cell {
	path := []cell{end}
	cur := end
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
