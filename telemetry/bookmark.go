package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkKillSurge          BookmarkType = "kill_surge"
	BookmarkSpeciesRadiation   BookmarkType = "species_radiation"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkStableEcosystem    BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// Detection thresholds.
const (
	minBookmarkHistory = 3
	stableWindow       = 4
	stableTrigger      = 5    // consecutive stable snapshots before firing
	stableCV2          = 0.04 // CV^2 < 0.04 means CV < 0.2
	recoveryFloor      = 5
	crashDrop          = 0.30
)

// BookmarkDetector flags interesting moments in the snapshot stream.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []Snapshot
	historySize int
	historyIdx  int
	historyFull bool

	recentPopMin int // minimum population since the last recovery
	recentPeak   int // peak population since the last crash
	stableCount  int // consecutive stable snapshots
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableTrigger {
		historySize = stableTrigger
	}
	return &BookmarkDetector{
		history:      make([]Snapshot, historySize),
		historySize:  historySize,
		recentPopMin: -1,
	}
}

// Check analyzes the latest snapshot and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(s Snapshot) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(Snapshot) *Bookmark{
			bd.checkKillSurge,
			bd.checkSpeciesRadiation,
			bd.checkRecovery,
			bd.checkCrash,
			bd.checkStable,
		} {
			if b := check(s); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(s)

	if bd.recentPopMin < 0 || s.Population < bd.recentPopMin {
		bd.recentPopMin = s.Population
	}
	if s.Population > bd.recentPeak {
		bd.recentPeak = s.Population
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(s Snapshot) {
	bd.history[bd.historyIdx] = s
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded snapshots oldest first.
func (bd *BookmarkDetector) getHistory() []Snapshot {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]Snapshot, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkKillSurge(s Snapshot) *Bookmark {
	history := bd.getHistory()
	if len(history) < minBookmarkHistory {
		return nil
	}
	kills := make([]float64, len(history))
	for i, h := range history {
		kills[i] = float64(h.Kills)
	}
	avg := stat.Mean(kills, nil)
	if avg == 0 || s.Kills < 3 || float64(s.Kills) <= avg*2 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkKillSurge,
		Tick:        s.Tick,
		Description: fmt.Sprintf("%d kills is %.1fx average (%.2f)", s.Kills, float64(s.Kills)/avg, avg),
	}
}

func (bd *BookmarkDetector) checkSpeciesRadiation(s Snapshot) *Bookmark {
	history := bd.getHistory()
	if len(history) < minBookmarkHistory {
		return nil
	}
	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.SpeciesCount)
	}
	avg := stat.Mean(counts, nil)
	if s.SpeciesCount < 4 || float64(s.SpeciesCount) < avg*2 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSpeciesRadiation,
		Tick:        s.Tick,
		Description: fmt.Sprintf("%d species coexist, average %.1f", s.SpeciesCount, avg),
	}
}

func (bd *BookmarkDetector) checkRecovery(s Snapshot) *Bookmark {
	if bd.recentPopMin <= 0 || bd.recentPopMin > recoveryFloor {
		return nil
	}
	if s.Population < bd.recentPopMin*3 || s.Population < 2*recoveryFloor {
		return nil
	}
	oldMin := bd.recentPopMin
	bd.recentPopMin = s.Population
	return &Bookmark{
		Type:        BookmarkPopulationRecovery,
		Tick:        s.Tick,
		Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, s.Population),
	}
}

func (bd *BookmarkDetector) checkCrash(s Snapshot) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}
	drop := 1.0 - float64(s.Population)/float64(bd.recentPeak)
	if drop <= crashDrop || s.Population >= bd.recentPeak-10 {
		return nil
	}
	oldPeak := bd.recentPeak
	bd.recentPeak = s.Population
	return &Bookmark{
		Type:        BookmarkPopulationCrash,
		Tick:        s.Tick,
		Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, s.Population),
	}
}

func (bd *BookmarkDetector) checkStable(s Snapshot) *Bookmark {
	if s.Population < 10 || s.SpeciesCount < 2 {
		bd.stableCount = 0
		return nil
	}
	history := bd.getHistory()
	if len(history) < stableWindow {
		return nil
	}

	pops := make([]float64, stableWindow)
	for i, h := range history[len(history)-stableWindow:] {
		pops[i] = float64(h.Population)
	}
	mean, variance := stat.PopMeanVariance(pops, nil)
	if mean > 0 && variance/(mean*mean) < stableCV2 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount != stableTrigger {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStableEcosystem,
		Tick:        s.Tick,
		Description: fmt.Sprintf("Stable ecosystem of %d agents in %d species", s.Population, s.SpeciesCount),
	}
}
