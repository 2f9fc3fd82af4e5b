// Package neural provides the default behaviour controller: one small
// feedforward network per agent that turns local sensing into drives and
// movement.
package neural

import (
	"math"
	"math/rand"
)

// Network dimensions. The hidden width is configurable.
const (
	NumInputs  = 10 // see Sensors.ToInputs
	NumOutputs = 5  // turn, effort, attack, avoid, mate
)

// Output indices.
const (
	OutTurn = iota
	OutEffort
	OutAttack
	OutAvoid
	OutMate
)

// FFNN is a simple two-layer feedforward neural network.
type FFNN struct {
	W1 [][NumInputs]float64  // input -> hidden weights
	B1 []float64             // hidden biases
	W2 [NumOutputs][]float64 // hidden -> output weights
	B2 [NumOutputs]float64   // output biases
}

// NewFFNN creates a randomly initialized network with the given hidden width.
func NewFFNN(rng *rand.Rand, hidden int) *FFNN {
	if hidden < 1 {
		hidden = 1
	}
	nn := &FFNN{
		W1: make([][NumInputs]float64, hidden),
		B1: make([]float64, hidden),
	}
	// Xavier initialization
	scale1 := math.Sqrt(2.0 / NumInputs)
	scale2 := math.Sqrt(2.0 / float64(hidden))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = rng.NormFloat64() * scale1
		}
	}
	for i := range nn.W2 {
		nn.W2[i] = make([]float64, hidden)
		for j := range nn.W2[i] {
			nn.W2[i][j] = rng.NormFloat64() * scale2
		}
	}

	// Attack rarely pays early on; start it biased low.
	nn.B2[OutAttack] = -1.0
	return nn
}

// Hidden returns the hidden layer width.
func (nn *FFNN) Hidden() int { return len(nn.B1) }

// Forward computes activated outputs. bias is added to the output
// pre-activations. Turn is in [-1,1], every other output in [0,1].
func (nn *FFNN) Forward(inputs *[NumInputs]float64, bias *[NumOutputs]float64) [NumOutputs]float64 {
	hidden := make([]float64, len(nn.B1))
	for i := range hidden {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	var out [NumOutputs]float64
	for i := 0; i < NumOutputs; i++ {
		sum := nn.B2[i]
		if bias != nil {
			sum += bias[i]
		}
		for j, h := range hidden {
			sum += nn.W2[i][j] * h
		}
		out[i] = sum
	}

	out[OutTurn] = tanh(out[OutTurn])
	for i := OutEffort; i < NumOutputs; i++ {
		out[i] = saturate01(out[i]*0.5 + 0.5)
	}
	return out
}

// saturate01 clamps x to [0, 1].
func saturate01(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// MutateSparse applies sparse per-weight mutation for stable lineages.
// rate: probability each weight mutates (biases mutate at half the rate)
// sigma: standard deviation of normal perturbation
// bigRate: probability a mutation uses bigSigma instead
// Returns the average absolute delta of all applied mutations.
func (nn *FFNN) MutateSparse(rng *rand.Rand, rate, sigma, bigRate, bigSigma float64) float64 {
	biasRate := rate * 0.5

	var totalDelta float64
	var count int
	perturb := func(w *float64, p float64) {
		if rng.Float64() >= p {
			return
		}
		s := sigma
		if rng.Float64() < bigRate {
			s = bigSigma
		}
		delta := rng.NormFloat64() * s
		*w += delta
		totalDelta += math.Abs(delta)
		count++
	}

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			perturb(&nn.W1[i][j], rate)
		}
		perturb(&nn.B1[i], biasRate)
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			perturb(&nn.W2[i][j], rate)
		}
		perturb(&nn.B2[i], biasRate)
	}

	if count == 0 {
		return 0
	}
	return totalDelta / float64(count)
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	clone := &FFNN{
		W1: make([][NumInputs]float64, len(nn.W1)),
		B1: make([]float64, len(nn.B1)),
		B2: nn.B2,
	}
	copy(clone.W1, nn.W1)
	copy(clone.B1, nn.B1)
	for i := range nn.W2 {
		clone.W2[i] = append([]float64(nil), nn.W2[i]...)
	}
	return clone
}

// tanh uses a fast rational approximation.
func tanh(x float64) float64 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
