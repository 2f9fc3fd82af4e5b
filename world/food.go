package world

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Cluster is a drifting food hotspot.
type Cluster struct {
	X, Y float64
}

// FoodClusters moves hotspot centres along smooth noise-driven headings.
type FoodClusters struct {
	Centers []Cluster

	noise      opensimplex.Noise
	time       float64
	speed      float64
	noiseScale float64
	w, h       float64
}

func newFoodClusters(w *World, seed int64) *FoodClusters {
	fc := w.cfg.Food
	c := &FoodClusters{
		Centers:    make([]Cluster, fc.Clusters),
		noise:      opensimplex.NewNormalized(seed),
		speed:      fc.DriftSpeed,
		noiseScale: fc.NoiseScale,
		w:          w.width,
		h:          w.height,
	}
	for i := range c.Centers {
		c.Centers[i] = Cluster{X: w.rng.Float64() * w.width, Y: w.rng.Float64() * w.height}
	}
	return c
}

// Update drifts every centre by speed*dt along its noise heading.
func (c *FoodClusters) Update(dt float64) {
	c.time += dt
	for i := range c.Centers {
		angle := c.noise.Eval2(float64(i)*17.31, c.time*c.noiseScale) * 2 * math.Pi
		c.Centers[i].X = Wrap(c.Centers[i].X+math.Cos(angle)*c.speed*dt, c.w)
		c.Centers[i].Y = Wrap(c.Centers[i].Y+math.Sin(angle)*c.speed*dt, c.h)
	}
}

// SpawnFood adds food at FOOD_SPAWN_RATE items per second. The fractional
// part of rate*dt is spawned with matching probability. The total never
// exceeds MAX_FOOD. It returns the number of items added.
func (w *World) SpawnFood(dt float64) int {
	expected := w.cfg.Food.SpawnRate * dt
	n := int(expected)
	if w.rng.Float64() < expected-float64(n) {
		n++
	}

	return w.SeedFood(n)
}

// SeedFood places up to n items using the cluster-biased placement,
// respecting MAX_FOOD. It returns the number placed.
func (w *World) SeedFood(n int) int {
	fc := w.cfg.Food
	added := 0
	for ; added < n && len(w.foodList) < fc.Max; added++ {
		x, y := w.foodSpot()
		w.SpawnFoodAt(x, y, fc.Energy)
	}
	return added
}

// foodSpot picks a position near a random cluster with probability
// cluster_bias, otherwise uniformly.
func (w *World) foodSpot() (float64, float64) {
	fc := w.cfg.Food
	if len(w.Clusters.Centers) > 0 && w.rng.Float64() < fc.ClusterBias {
		c := w.Clusters.Centers[w.rng.Intn(len(w.Clusters.Centers))]
		return Wrap(c.X+w.rng.NormFloat64()*fc.ClusterRadius, w.width),
			Wrap(c.Y+w.rng.NormFloat64()*fc.ClusterRadius, w.height)
	}
	return w.rng.Float64() * w.width, w.rng.Float64() * w.height
}
