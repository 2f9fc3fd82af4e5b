// Package events raises stochastic ecological events (epidemics) and
// detects species-level demographic changes (extinctions and emergences).
package events

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/world"
)

// Kind identifies an event.
type Kind uint8

const (
	KindEpidemic Kind = iota
	KindExtinction
	KindEmergence
)

func (k Kind) String() string {
	switch k {
	case KindEpidemic:
		return "epidemic"
	case KindExtinction:
		return "extinction"
	case KindEmergence:
		return "emergence"
	}
	return "unknown"
}

// Event is a one-shot notification. The csv tags are used by the
// telemetry output writer.
type Event struct {
	Tick     int32   `csv:"tick"`
	SimTime  float64 `csv:"sim_time"`
	Kind     Kind    `csv:"-"`
	KindName string  `csv:"kind"`
	Species  int     `csv:"species"`
	Disease  string  `csv:"disease"`
	Affected int     `csv:"affected"`
	Message  string  `csv:"message"`
}

// Manager runs epidemic checks and the species census.
type Manager struct {
	epidemicTimer float64
	simTime       float64

	prevCounts map[int]int
	counts     map[int]int
	censused   bool

	message      string
	messageTimer float64

	log     []Event
	logSize int

	alive []ecs.Entity
	fired []Event
}

// NewManager creates an event manager keeping at most logSize recent events.
func NewManager(logSize int) *Manager {
	if logSize < 1 {
		logSize = 1
	}
	return &Manager{
		prevCounts: make(map[int]int),
		counts:     make(map[int]int),
		logSize:    logSize,
	}
}

// Update advances timers by dt, runs the epidemic check and the species
// census, and returns the events fired this tick. The returned slice is
// reused on the next call.
func (m *Manager) Update(w *world.World, dt float64, tick int32) []Event {
	cfg := w.Config()
	m.simTime += dt
	m.fired = m.fired[:0]

	if m.messageTimer > 0 {
		m.messageTimer -= dt
		if m.messageTimer <= 0 {
			m.messageTimer = 0
			m.message = ""
		}
	}

	m.alive = m.alive[:0]
	for _, e := range w.AgentList() {
		if w.Agent(e).Vitals.Alive {
			m.alive = append(m.alive, e)
		}
	}

	ec := cfg.Epidemic
	m.epidemicTimer += dt
	if ec.Interval > 0 && m.epidemicTimer >= ec.Interval {
		m.epidemicTimer -= ec.Interval
		threshold := float64(cfg.World.InitialAgents) * ec.MinPopulationRatio
		if float64(len(m.alive)) > threshold && w.Rand().Float64() < ec.BaseProbability {
			m.epidemic(w, tick)
		}
	}

	m.census(w, tick)

	for _, ev := range m.fired {
		m.record(ev, cfg.Events.MessageDuration)
	}
	return m.fired
}

// epidemic infects a random AffectedRatio share of the living population.
// Each affected agent loses Severity*(1-resistance) of its energy.
func (m *Manager) epidemic(w *world.World, tick int32) {
	cfg := w.Config()
	ec := cfg.Epidemic
	rng := w.Rand()
	if len(cfg.Disease.Names) == 0 {
		return
	}
	disease := cfg.Disease.Names[rng.Intn(len(cfg.Disease.Names))]

	n := int(float64(len(m.alive)) * ec.AffectedRatio)
	if n <= 0 {
		return
	}
	order := rng.Perm(len(m.alive))[:n]
	for _, i := range order {
		a := w.Agent(m.alive[i])
		res := a.Health.ResistanceTo(disease)
		loss := ec.Severity * (1 - res)
		if loss > 1 {
			loss = 1
		}
		a.Vitals.Energy *= 1 - loss
		a.Health.Infect(disease, ec.Duration)
		if a.Vitals.Energy <= 0 {
			a.Vitals.Kill(components.CauseStarvation)
		}
	}

	m.fire(Event{
		Tick:     tick,
		Kind:     KindEpidemic,
		Disease:  disease,
		Affected: n,
		Message:  fmt.Sprintf("Epidemic of %s affects %d creatures", disease, n),
	})
}

// census diffs per-species counts against the previous tick. The first
// census only establishes a baseline.
func (m *Manager) census(w *world.World, tick int32) {
	clear(m.counts)
	for _, e := range m.alive {
		if a := w.Agent(e); a.Vitals.Alive {
			m.counts[a.Her.Species]++
		}
	}

	if m.censused {
		for _, sp := range sortedKeys(m.prevCounts) {
			if m.counts[sp] == 0 {
				m.fire(Event{
					Tick:    tick,
					Kind:    KindExtinction,
					Species: sp,
					Message: fmt.Sprintf("Species %d has gone extinct", sp),
				})
			}
		}
		for _, sp := range sortedKeys(m.counts) {
			if m.prevCounts[sp] == 0 {
				m.fire(Event{
					Tick:    tick,
					Kind:    KindEmergence,
					Species: sp,
					Message: fmt.Sprintf("New species %d has emerged", sp),
				})
			}
		}
	}
	m.censused = true
	m.prevCounts, m.counts = m.counts, m.prevCounts
}

func (m *Manager) fire(ev Event) {
	ev.SimTime = m.simTime
	ev.KindName = ev.Kind.String()
	m.fired = append(m.fired, ev)
}

func (m *Manager) record(ev Event, duration float64) {
	slog.Info("event",
		"kind", ev.KindName,
		"tick", ev.Tick,
		"species", ev.Species,
		"disease", ev.Disease,
		"affected", ev.Affected,
	)
	m.message = ev.Message
	m.messageTimer = duration
	if len(m.log) >= m.logSize {
		copy(m.log, m.log[1:])
		m.log = m.log[:len(m.log)-1]
	}
	m.log = append(m.log, ev)
}

// Message returns the current notification and its remaining display time.
// The message is empty once the timer runs out.
func (m *Manager) Message() (string, float64) {
	return m.message, m.messageTimer
}

// Log returns recent events, oldest first.
func (m *Manager) Log() []Event {
	return m.log
}

// SpeciesCounts returns the counts from the latest census.
func (m *Manager) SpeciesCounts() map[int]int {
	return m.prevCounts
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k, v := range m {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}
