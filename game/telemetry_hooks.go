package game

import "log/slog"

// flushTelemetry reports perf statistics every telemetry.log_interval ticks.
func (g *Game) flushTelemetry() {
	interval := int64(g.cfg.Telemetry.LogInterval)
	if interval <= 0 || g.tick%interval != 0 {
		return
	}

	perfStats := g.perfCollector.Stats()

	if g.logStats {
		perfStats.LogStats()
		slog.Info("world",
			"tick", g.tick,
			"blobs", g.numBlobs,
			"food", g.numFood,
			"chems", g.numChems,
		)
	}

	if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
		g.logError("failed to write perf", err)
	}
}

func (g *Game) logError(msg string, err error) {
	slog.Error(msg, "tick", g.tick, "error", err)
}
