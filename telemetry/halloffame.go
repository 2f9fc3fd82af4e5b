package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

// Hall of fame entry criteria and fitness weights.
const (
	hallMinOffspring  = 1
	hallMinSurvival   = 60.0 // seconds
	hallMinKills      = 2
	hallWeightChild   = 10.0
	hallWeightSurvive = 0.1
	hallWeightKill    = 5.0
)

// HallEntry records a successful agent at the moment it died.
type HallEntry struct {
	ID         uint32             `json:"id"`
	Species    int                `json:"species"`
	Generation int                `json:"generation"`
	Fitness    float64            `json:"fitness"`
	Offspring  int                `json:"offspring"`
	Kills      int                `json:"kills"`
	Mutations  int                `json:"mutations"`
	Survival   float64            `json:"survival_sec"`
	Cause      string             `json:"cause"`
	Phenotype  genetics.Phenotype `json:"phenotype"`
}

// HallOfFame keeps the fittest dead agents of each species, best first.
type HallOfFame struct {
	halls   map[int][]HallEntry
	maxSize int
}

// NewHallOfFame creates a hall of fame with the given capacity per species.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{halls: make(map[int][]HallEntry), maxSize: maxSize}
}

// Consider evaluates a dead agent for entry. It returns true if the agent
// was added.
func (hof *HallOfFame) Consider(a world.Agent) bool {
	if !meetsEntryCriteria(a) {
		return false
	}
	entry := HallEntry{
		ID:         a.Her.ID,
		Species:    a.Her.Species,
		Generation: a.Her.Generation,
		Fitness:    Fitness(a),
		Offspring:  a.Life.Offspring,
		Kills:      a.Life.Kills,
		Mutations:  a.Life.Mutations,
		Survival:   a.Vitals.Age,
		Cause:      a.Vitals.Cause.String(),
		Phenotype:  a.Her.Phenotype,
	}
	hof.halls[entry.Species] = hof.insertEntry(hof.halls[entry.Species], entry)
	return true
}

// meetsEntryCriteria admits agents that reproduced, or that lived long and
// killed.
func meetsEntryCriteria(a world.Agent) bool {
	if a.Life.Offspring >= hallMinOffspring {
		return true
	}
	return a.Vitals.Age >= hallMinSurvival && a.Life.Kills >= hallMinKills
}

// Fitness scores an agent's life: offspring dominate, survival and kills
// break ties.
func Fitness(a world.Agent) float64 {
	return float64(a.Life.Offspring)*hallWeightChild +
		a.Vitals.Age*hallWeightSurvive +
		float64(a.Life.Kills)*hallWeightKill
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

// Size returns the number of entries for a species.
func (hof *HallOfFame) Size(species int) int {
	return len(hof.halls[species])
}

// Top returns the best entry of a species.
func (hof *HallOfFame) Top(species int) (HallEntry, bool) {
	hall := hof.halls[species]
	if len(hall) == 0 {
		return HallEntry{}, false
	}
	return hall[0], true
}

// Species returns the species with at least one entry, ascending.
func (hof *HallOfFame) Species() []int {
	ids := make([]int, 0, len(hof.halls))
	for sp, hall := range hof.halls {
		if len(hall) > 0 {
			ids = append(ids, sp)
		}
	}
	sort.Ints(ids)
	return ids
}

// MarshalJSON serializes the halls keyed by species id.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]HallEntry, len(hof.halls))
	for _, sp := range hof.Species() {
		export[fmt.Sprintf("species_%d", sp)] = hof.halls[sp]
	}
	return json.Marshal(export)
}

// WriteFile saves the hall of fame as indented JSON.
func (hof *HallOfFame) WriteFile(path string) error {
	data, err := json.MarshalIndent(hof, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}
