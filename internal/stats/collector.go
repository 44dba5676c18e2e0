package stats

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/models"
)

// InlineSpecID groups runs over documents that were posted inline.
const InlineSpecID = "inline"

// Collector aggregates statistics about minification runs.
type Collector struct {
	mu               sync.RWMutex
	startTime        time.Time
	specs            map[string]*models.AtomicSpecStat // specID -> stats
	recentErrors     []models.ErrorStat
	hourlyStats      map[string]*hourlyCounter // "YYYY-MM-DD-HH" -> counter
	totalDiagnostics int64
	maxErrors        int
	maxHourlySlots   int
}

type hourlyCounter struct {
	Hour   string
	Runs   int64
	Failed int64
}

// NewCollector creates a new statistics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime:      time.Now(),
		specs:          make(map[string]*models.AtomicSpecStat),
		recentErrors:   make([]models.ErrorStat, 0),
		hourlyStats:    make(map[string]*hourlyCounter),
		maxErrors:      100,
		maxHourlySlots: 168, // 7 days
	}
}

// RecordRun records a finished run and its error diagnostics.
func (c *Collector) RecordRun(run *models.Run) {
	c.mu.Lock()
	defer c.mu.Unlock()

	specID := run.SpecID
	if specID == "" {
		specID = InlineSpecID
	}
	duration := time.Duration(run.Duration)

	specStats, ok := c.specs[specID]
	if !ok {
		specStats = &models.AtomicSpecStat{SpecID: specID}
		specStats.MinTimeNs.Store(duration.Nanoseconds())
		c.specs[specID] = specStats
	}

	specStats.TotalRuns.Add(1)
	specStats.TotalTimeNs.Add(duration.Nanoseconds())
	specStats.LastRunTime.Store(time.Now())
	if run.Success {
		specStats.OriginalLines.Add(int64(run.OriginalSize))
		specStats.MinifiedLines.Add(int64(run.MinifiedSize))
		specStats.TotalReduction.Add(int64(math.Round(run.ReductionPercentage * 100)))
	} else {
		specStats.FailedRuns.Add(1)
	}

	durationNs := duration.Nanoseconds()
	for {
		currentMin := specStats.MinTimeNs.Load()
		if durationNs >= currentMin || specStats.MinTimeNs.CompareAndSwap(currentMin, durationNs) {
			break
		}
	}
	for {
		currentMax := specStats.MaxTimeNs.Load()
		if durationNs <= currentMax || specStats.MaxTimeNs.CompareAndSwap(currentMax, durationNs) {
			break
		}
	}

	c.totalDiagnostics += int64(len(run.Diagnostics))
	for _, d := range run.Diagnostics {
		if d.Severity == minify.SeverityError {
			c.recordError(specID, run.ID, d)
		}
	}

	hourKey := time.Now().Format("2006-01-02-15")
	hourly, ok := c.hourlyStats[hourKey]
	if !ok {
		hourly = &hourlyCounter{Hour: hourKey}
		c.hourlyStats[hourKey] = hourly
		c.cleanupOldHourlyStats()
	}
	hourly.Runs++
	if !run.Success {
		hourly.Failed++
	}
}

// recordError appends to the bounded error ring. Callers hold c.mu.
func (c *Collector) recordError(specID, runID string, d minify.Diagnostic) {
	c.recentErrors = append(c.recentErrors, models.ErrorStat{
		Timestamp: time.Now(),
		SpecID:    specID,
		RunID:     runID,
		Code:      string(d.Code),
		Location:  d.Location,
		Error:     d.Message,
	})
	if len(c.recentErrors) > c.maxErrors {
		c.recentErrors = c.recentErrors[1:]
	}
}

// cleanupOldHourlyStats removes hourly stats older than maxHourlySlots.
func (c *Collector) cleanupOldHourlyStats() {
	if len(c.hourlyStats) <= c.maxHourlySlots {
		return
	}

	keys := make([]string, 0, len(c.hourlyStats))
	for k := range c.hourlyStats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	toRemove := len(keys) - c.maxHourlySlots
	for i := 0; i < toRemove; i++ {
		delete(c.hourlyStats, keys[i])
	}
}

// GetGlobalStats returns global statistics. names maps spec IDs to display names.
func (c *Collector) GetGlobalStats(storedSpecs int, names map[string]string) *models.GlobalStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalRuns, failedRuns, totalTimeNs, linesSaved, reductionSum int64

	specStats := make([]models.SpecStats, 0, len(c.specs))
	for id, s := range c.specs {
		stat := s.ToSpecStats(names[id])
		specStats = append(specStats, stat)
		totalRuns += stat.TotalRuns
		failedRuns += stat.FailedRuns
		totalTimeNs += s.TotalTimeNs.Load()
		linesSaved += stat.LinesSaved
		reductionSum += s.TotalReduction.Load()
	}

	// Busiest specs first
	sort.Slice(specStats, func(i, j int) bool {
		if specStats[i].TotalRuns == specStats[j].TotalRuns {
			return specStats[i].SpecID < specStats[j].SpecID
		}
		return specStats[i].TotalRuns > specStats[j].TotalRuns
	})
	if len(specStats) > 10 {
		specStats = specStats[:10]
	}

	var avgDurationMs, avgReduction float64
	if totalRuns > 0 {
		avgDurationMs = float64(totalTimeNs) / float64(totalRuns) / 1e6
	}
	if succeeded := totalRuns - failedRuns; succeeded > 0 {
		avgReduction = float64(reductionSum) / 100 / float64(succeeded)
	}

	recentErrors := make([]models.ErrorStat, len(c.recentErrors))
	copy(recentErrors, c.recentErrors)

	return &models.GlobalStats{
		TotalRuns:        totalRuns,
		FailedRuns:       failedRuns,
		TotalDiagnostics: c.totalDiagnostics,
		StoredSpecs:      storedSpecs,
		AvgDurationMs:    avgDurationMs,
		AvgReduction:     avgReduction,
		LinesSaved:       linesSaved,
		StartTime:        c.startTime,
		Uptime:           formatDuration(time.Since(c.startTime)),
		TopSpecs:         specStats,
		RecentErrors:     recentErrors,
		RunsByHour:       c.buildHourlyStats(),
	}
}

// GetSpecStats returns statistics for a specific spec.
func (c *Collector) GetSpecStats(specID, specName string) *models.SpecStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.specs[specID]; ok {
		stat := s.ToSpecStats(specName)
		return &stat
	}

	return &models.SpecStats{SpecID: specID, SpecName: specName}
}

// buildHourlyStats builds the run counts of the last 24 hours.
func (c *Collector) buildHourlyStats() []models.HourlyStat {
	now := time.Now()
	stats := make([]models.HourlyStat, 0, 24)

	for i := 23; i >= 0; i-- {
		hour := now.Add(-time.Duration(i) * time.Hour)
		hourKey := hour.Format("2006-01-02-15")

		stat := models.HourlyStat{
			Hour: hour.Format("15:00"),
		}
		if hourly, ok := c.hourlyStats[hourKey]; ok {
			stat.Runs = hourly.Runs
			stat.Failed = hourly.Failed
		}

		stats = append(stats, stat)
	}

	return stats
}

// Reset resets all statistics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.specs = make(map[string]*models.AtomicSpecStat)
	c.recentErrors = make([]models.ErrorStat, 0)
	c.hourlyStats = make(map[string]*hourlyCounter)
	c.totalDiagnostics = 0
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Minute:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
