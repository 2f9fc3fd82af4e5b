package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/world"
)

func deadAgent(id uint32, species, offspring, kills int, age float64) world.Agent {
	return world.Agent{
		Her:    &components.Heredity{ID: id, Species: species},
		Vitals: &components.Vitals{Age: age, Cause: components.CauseOldAge},
		Life:   &components.Lifetime{Offspring: offspring, Kills: kills},
	}
}

func TestHallOfFame_EntryCriteria(t *testing.T) {
	tests := []struct {
		name  string
		agent world.Agent
		want  bool
	}{
		{"reproduced", deadAgent(1, 1, 1, 0, 5), true},
		{"old hunter", deadAgent(2, 1, 0, 2, 60), true},
		{"old pacifist", deadAgent(3, 1, 0, 0, 200), false},
		{"young hunter", deadAgent(4, 1, 0, 5, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hof := NewHallOfFame(5)
			if got := hof.Consider(tt.agent); got != tt.want {
				t.Errorf("Consider = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHallOfFame_SortedAndBounded(t *testing.T) {
	hof := NewHallOfFame(3)
	for i, offspring := range []int{1, 4, 2, 5, 3} {
		hof.Consider(deadAgent(uint32(i+1), 7, offspring, 0, 10))
	}
	if got := hof.Size(7); got != 3 {
		t.Fatalf("Size = %d, want 3", got)
	}
	top, ok := hof.Top(7)
	if !ok || top.Offspring != 5 {
		t.Errorf("Top = %+v, want the agent with 5 offspring", top)
	}
	hall := hof.halls[7]
	for i := 1; i < len(hall); i++ {
		if hall[i].Fitness > hall[i-1].Fitness {
			t.Errorf("hall not sorted: %v before %v", hall[i-1].Fitness, hall[i].Fitness)
		}
	}
	if hall[2].Offspring != 3 {
		t.Errorf("weakest kept entry has %d offspring, want 3", hall[2].Offspring)
	}
}

func TestHallOfFame_PerSpecies(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(deadAgent(1, 3, 1, 0, 1))
	hof.Consider(deadAgent(2, 1, 1, 0, 1))
	if _, ok := hof.Top(2); ok {
		t.Error("species 2 should be empty")
	}
	got := hof.Species()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Species = %v, want [1 3]", got)
	}
}

func TestHallOfFame_WriteFile(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(deadAgent(9, 2, 3, 0, 40))

	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := hof.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string][]HallEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	entries := got["species_2"]
	if len(entries) != 1 || entries[0].ID != 9 || entries[0].Cause != "old_age" {
		t.Errorf("decoded %+v", got)
	}
}
