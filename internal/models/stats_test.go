package models

import (
	"testing"
	"time"
)

func TestAtomicSpecStat_ToSpecStats(t *testing.T) {
	a := &AtomicSpecStat{SpecID: "spec-1"}

	a.TotalRuns.Store(4)
	a.FailedRuns.Store(1)
	a.TotalTimeNs.Store(40000000) // 40ms
	a.MinTimeNs.Store(5000000)    // 5ms
	a.MaxTimeNs.Store(20000000)   // 20ms
	a.OriginalLines.Store(1000)
	a.MinifiedLines.Store(150)
	a.TotalReduction.Store(24000) // 3 successful runs at 80%
	a.LastRunTime.Store(time.Now())

	stat := a.ToSpecStats("Petstore")

	if stat.SpecID != "spec-1" {
		t.Errorf("Expected spec ID 'spec-1', got %q", stat.SpecID)
	}
	if stat.SpecName != "Petstore" {
		t.Errorf("Expected spec name 'Petstore', got %q", stat.SpecName)
	}
	if stat.TotalRuns != 4 {
		t.Errorf("Expected 4 runs, got %d", stat.TotalRuns)
	}
	if stat.FailedRuns != 1 {
		t.Errorf("Expected 1 failed run, got %d", stat.FailedRuns)
	}
	if stat.AvgDurationMs != 10.0 {
		t.Errorf("Expected avg 10ms, got %v", stat.AvgDurationMs)
	}
	if stat.MinDurationMs != 5.0 {
		t.Errorf("Expected min 5ms, got %v", stat.MinDurationMs)
	}
	if stat.MaxDurationMs != 20.0 {
		t.Errorf("Expected max 20ms, got %v", stat.MaxDurationMs)
	}
	if stat.AvgReduction != 80.0 {
		t.Errorf("Expected avg reduction 80, got %v", stat.AvgReduction)
	}
	if stat.LinesSaved != 850 {
		t.Errorf("Expected 850 lines saved, got %d", stat.LinesSaved)
	}
	if stat.LastRunTime == "" {
		t.Error("Expected non-empty last run time")
	}
}

func TestAtomicSpecStat_ZeroRuns(t *testing.T) {
	a := &AtomicSpecStat{SpecID: "spec-1"}

	stat := a.ToSpecStats("")

	if stat.TotalRuns != 0 {
		t.Errorf("Expected 0 runs, got %d", stat.TotalRuns)
	}
	if stat.AvgDurationMs != 0 {
		t.Errorf("Expected avg 0 for zero runs, got %v", stat.AvgDurationMs)
	}
	if stat.AvgReduction != 0 {
		t.Errorf("Expected avg reduction 0 for zero runs, got %v", stat.AvgReduction)
	}
	if stat.LastRunTime != "" {
		t.Errorf("Expected empty last run time, got %q", stat.LastRunTime)
	}
}
