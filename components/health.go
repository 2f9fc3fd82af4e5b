package components

// Health holds infection state and per-disease resistance in [0,1].
type Health struct {
	Infected   bool
	Disease    string
	Timer      float64 // seconds of infection remaining
	Resistance map[string]float64
}

// ResistanceTo returns the resistance to a disease, 0 when unknown.
func (h *Health) ResistanceTo(disease string) float64 {
	return h.Resistance[disease]
}

// Infect starts an infection unless one is already running.
func (h *Health) Infect(disease string, duration float64) bool {
	if h.Infected {
		return false
	}
	h.Infected = true
	h.Disease = disease
	h.Timer = duration
	return true
}
