package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/biome/config"
)

// WaterSource is a circular pond agents can drink from.
type WaterSource struct {
	X, Y   float64
	Radius float64
}

// Contains reports whether a point lies inside the pond.
func (w WaterSource) Contains(x, y float64) bool {
	dx, dy := x-w.X, y-w.Y
	return dx*dx+dy*dy <= w.Radius*w.Radius
}

// ObstacleKind distinguishes solid rocks from water bodies.
type ObstacleKind uint8

const (
	Rock ObstacleKind = iota
	River
	Lake
)

func (k ObstacleKind) String() string {
	switch k {
	case River:
		return "river"
	case Lake:
		return "lake"
	}
	return "rock"
}

// ParseObstacleKind maps a config name to a kind. Unknown names are rocks.
func ParseObstacleKind(s string) ObstacleKind {
	switch s {
	case "river":
		return River
	case "lake":
		return Lake
	}
	return Rock
}

// Obstacle is a polygonal region. Rectangles are stored as four-point polygons.
type Obstacle struct {
	Kind     ObstacleKind
	Poly     []r2.Vec
	Alive    bool
	min, max r2.Vec
}

// NewObstacle builds an obstacle from its config.
func NewObstacle(c config.ObstacleConfig) Obstacle {
	var poly []r2.Vec
	if len(c.Points) >= 3 {
		poly = make([]r2.Vec, len(c.Points))
		for i, p := range c.Points {
			poly[i] = r2.Vec{X: p[0], Y: p[1]}
		}
	} else {
		poly = []r2.Vec{
			{X: c.X, Y: c.Y},
			{X: c.X + c.W, Y: c.Y},
			{X: c.X + c.W, Y: c.Y + c.H},
			{X: c.X, Y: c.Y + c.H},
		}
	}

	o := Obstacle{Kind: ParseObstacleKind(c.Kind), Poly: poly, Alive: true}
	o.min = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	o.max = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range poly {
		o.min.X, o.min.Y = math.Min(o.min.X, p.X), math.Min(o.min.Y, p.Y)
		o.max.X, o.max.Y = math.Max(o.max.X, p.X), math.Max(o.max.Y, p.Y)
	}
	return o
}

// IsWater reports whether the obstacle is a river or lake.
func (o *Obstacle) IsWater() bool {
	return o.Kind == River || o.Kind == Lake
}

// Contains reports whether p lies inside the polygon (even-odd rule).
func (o *Obstacle) Contains(p r2.Vec) bool {
	if p.X < o.min.X || p.X > o.max.X || p.Y < o.min.Y || p.Y > o.max.Y {
		return false
	}
	inside := false
	n := len(o.Poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := o.Poly[i], o.Poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// EdgeDistance returns the distance from p to the nearest polygon edge.
func (o *Obstacle) EdgeDistance(p r2.Vec) float64 {
	best := math.Inf(1)
	n := len(o.Poly)
	for i := 0; i < n; i++ {
		best = math.Min(best, segmentDistance(p, o.Poly[i], o.Poly[(i+1)%n]))
	}
	return best
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}

// InWater reports whether a point lies in a pond, river or lake.
func (w *World) InWater(x, y float64) bool {
	for _, ws := range w.Water {
		if ws.Contains(x, y) {
			return true
		}
	}
	p := r2.Vec{X: x, Y: y}
	for i := range w.Obstacles {
		o := &w.Obstacles[i]
		if o.Alive && o.IsWater() && o.Contains(p) {
			return true
		}
	}
	return false
}

// InRock reports whether a point lies inside a solid obstacle.
func (w *World) InRock(x, y float64) bool {
	p := r2.Vec{X: x, Y: y}
	for i := range w.Obstacles {
		o := &w.Obstacles[i]
		if o.Alive && o.Kind == Rock && o.Contains(p) {
			return true
		}
	}
	return false
}

// DrinkFactor returns the drink-rate multiplier of the first water body an
// agent at (x, y) can drink from. Ponds give the full rate, lake edges the
// full rate, river edges riverFactor.
func (w *World) DrinkFactor(x, y float64) (float64, bool) {
	for _, ws := range w.Water {
		if ws.Contains(x, y) {
			return 1, true
		}
	}
	hc := w.cfg.Hydration
	p := r2.Vec{X: x, Y: y}
	for i := range w.Obstacles {
		o := &w.Obstacles[i]
		if !o.Alive || !o.IsWater() {
			continue
		}
		if o.Contains(p) || o.EdgeDistance(p) <= hc.EdgeDrinkDistance {
			if o.Kind == River {
				return hc.RiverFactor, true
			}
			return 1, true
		}
	}
	return 0, false
}
