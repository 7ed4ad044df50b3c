package trace

import (
	"bufio"
	"fmt"
	"os"
)

// TraceLevel controls the verbosity of rollout tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures every step's decision and outcome.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// RolloutTrace collects step records across one or more episodes of a rollout.
type RolloutTrace struct {
	Level TraceLevel
	Steps []StepRecord
}

// NewRolloutTrace creates a RolloutTrace ready for recording.
func NewRolloutTrace(level TraceLevel) *RolloutTrace {
	return &RolloutTrace{
		Level: level,
		Steps: make([]StepRecord, 0),
	}
}

// RecordStep appends a step record. No-op unless the level captures steps.
func (rt *RolloutTrace) RecordStep(record StepRecord) {
	if rt.Level != TraceLevelSteps {
		return
	}
	rt.Steps = append(rt.Steps, record)
}

// WriteCSV writes the recorded steps to a CSV file, one row per step.
func (rt *RolloutTrace) WriteCSV(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating trace file %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := fmt.Fprintln(writer,
		"episode,step,action,tier,reward,cost,quality,quality_required,latency,sla_violated,budget_remaining"); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}
	for _, s := range rt.Steps {
		_, err := fmt.Fprintf(writer, "%d,%d,%d,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%t,%.6f\n",
			s.Episode, s.Step, s.Action, s.TierName, s.Reward, s.Cost,
			s.Quality, s.QualityRequired, s.Latency, s.SLAViolated, s.BudgetRemaining)
		if err != nil {
			return fmt.Errorf("writing trace row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing trace file %s: %w", path, err)
	}
	return nil
}
