package models

import (
	"sync/atomic"
	"time"
)

// GlobalStats represents global statistics.
type GlobalStats struct {
	TotalRuns        int64        `json:"totalRuns"`
	FailedRuns       int64        `json:"failedRuns"`
	TotalDiagnostics int64        `json:"totalDiagnostics"`
	StoredSpecs      int          `json:"storedSpecs"`
	AvgDurationMs    float64      `json:"avgDurationMs"`
	AvgReduction     float64      `json:"avgReductionPercentage"`
	LinesSaved       int64        `json:"linesSaved"`
	StartTime        time.Time    `json:"startTime"`
	Uptime           string       `json:"uptime"`
	TopSpecs         []SpecStats  `json:"topSpecs"`
	RecentErrors     []ErrorStat  `json:"recentErrors"`
	RunsByHour       []HourlyStat `json:"runsByHour"`
}

// SpecStats represents statistics for a specific spec.
type SpecStats struct {
	SpecID        string  `json:"specId"`
	SpecName      string  `json:"specName"`
	TotalRuns     int64   `json:"totalRuns"`
	FailedRuns    int64   `json:"failedRuns"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	MinDurationMs float64 `json:"minDurationMs"`
	MaxDurationMs float64 `json:"maxDurationMs"`
	AvgReduction  float64 `json:"avgReductionPercentage"`
	LinesSaved    int64   `json:"linesSaved"`
	LastRunTime   string  `json:"lastRunTime,omitempty"`
}

// ErrorStat represents an error diagnostic raised by a run.
type ErrorStat struct {
	Timestamp time.Time `json:"timestamp"`
	SpecID    string    `json:"specId"`
	RunID     string    `json:"runId"`
	Code      string    `json:"code"`
	Location  string    `json:"location,omitempty"`
	Error     string    `json:"error"`
}

// HourlyStat represents hourly run statistics.
type HourlyStat struct {
	Hour   string `json:"hour"`
	Runs   int64  `json:"runs"`
	Failed int64  `json:"failed"`
}

// AtomicSpecStat is a thread-safe version of spec statistics.
type AtomicSpecStat struct {
	SpecID         string
	TotalRuns      atomic.Int64
	FailedRuns     atomic.Int64
	TotalTimeNs    atomic.Int64
	MinTimeNs      atomic.Int64
	MaxTimeNs      atomic.Int64
	OriginalLines  atomic.Int64
	MinifiedLines  atomic.Int64
	TotalReduction atomic.Int64 // Sum of successful reduction percentages, in hundredths
	LastRunTime    atomic.Value // stores time.Time
}

// ToSpecStats converts to a regular SpecStats.
func (a *AtomicSpecStat) ToSpecStats(specName string) SpecStats {
	totalRuns := a.TotalRuns.Load()
	totalTimeNs := a.TotalTimeNs.Load()
	failedRuns := a.FailedRuns.Load()
	var avgMs, avgReduction float64
	if totalRuns > 0 {
		avgMs = float64(totalTimeNs) / float64(totalRuns) / 1e6
	}
	if succeeded := totalRuns - failedRuns; succeeded > 0 {
		avgReduction = float64(a.TotalReduction.Load()) / 100 / float64(succeeded)
	}

	var lastRunTime string
	if t, ok := a.LastRunTime.Load().(time.Time); ok && !t.IsZero() {
		lastRunTime = t.Format(time.RFC3339)
	}

	return SpecStats{
		SpecID:        a.SpecID,
		SpecName:      specName,
		TotalRuns:     totalRuns,
		FailedRuns:    failedRuns,
		AvgDurationMs: avgMs,
		MinDurationMs: float64(a.MinTimeNs.Load()) / 1e6,
		MaxDurationMs: float64(a.MaxTimeNs.Load()) / 1e6,
		AvgReduction:  avgReduction,
		LinesSaved:    a.OriginalLines.Load() - a.MinifiedLines.Load(),
		LastRunTime:   lastRunTime,
	}
}
