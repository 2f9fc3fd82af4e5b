package game

import (
	"log/slog"

	"github.com/pthm-cable/biome/events"
	"github.com/pthm-cable/biome/telemetry"
)

// recordSnapshot forwards a snapshot to the callback, the bookmark
// detector, the log and the output files. Stats and perf log lines are
// throttled to LogInterval; bookmarks always log.
func (g *Game) recordSnapshot(s telemetry.Snapshot) {
	if g.statsCallback != nil {
		g.statsCallback(s)
	}

	bms := g.bookmarks.Check(s)
	for _, bm := range bms {
		bm.LogBookmark()
	}

	g.sinceLog += g.cfg.Telemetry.StatsInterval
	if g.logStats && g.sinceLog >= g.cfg.Telemetry.LogInterval {
		g.sinceLog = 0
		s.LogStats()
		g.perf.Stats().LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteSnapshot(s); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := g.outputManager.WriteBookmarks(bms); err != nil {
			slog.Error("failed to write bookmarks", "error", err)
		}
		if err := g.outputManager.WritePerf(g.perf.Stats(), s.Tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// recordEvents writes fired events to the output files.
func (g *Game) recordEvents(evs []events.Event) {
	if len(evs) == 0 || g.outputManager == nil {
		return
	}
	if err := g.outputManager.WriteEvents(evs); err != nil {
		slog.Error("failed to write events", "error", err)
	}
}
