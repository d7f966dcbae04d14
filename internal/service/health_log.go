package service

import (
	"math"
	"sync"
	"time"

	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// healthLogWindow is the number of daily entries kept per series
const healthLogWindow = 7

// HealthLogCommand records the values entered for one day.
// A nil field leaves that series untouched.
type HealthLogCommand struct {
	Day      string
	Sleep    *float64
	Stress   *float64
	Calories *float64
}

// HealthTracker holds the rolling weekly series shown on the dashboard
type HealthTracker struct {
	mu  sync.RWMutex
	log model.HealthLog
	now func() time.Time
}

// NewHealthTracker creates a tracker seeded with a sample week
func NewHealthTracker(now func() time.Time) *HealthTracker {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	series := func(values ...float64) []model.HealthLogEntry {
		out := make([]model.HealthLogEntry, len(values))
		for i, v := range values {
			out[i] = model.HealthLogEntry{Day: days[i], Value: v}
		}
		return out
	}

	return &HealthTracker{
		log: model.HealthLog{
			Sleep:    series(6.5, 7.2, 5.8, 8.0, 7.5, 9.0, 8.5),
			Stress:   series(7, 5, 8, 4, 6, 2, 3),
			Calories: series(320, 450, 200, 0, 500, 600, 150),
		},
		now: now,
	}
}

// Record appends the given values, dropping the oldest entry of each touched series.
// Stress is clamped to 1..10.
func (t *HealthTracker) Record(cmd HealthLogCommand) (model.HealthLog, error) {
	if cmd.Sleep == nil && cmd.Stress == nil && cmd.Calories == nil {
		return model.HealthLog{}, invalid(ErrInvalidHealthEntry, "at least one value is required")
	}
	if cmd.Sleep != nil && (*cmd.Sleep < 0 || *cmd.Sleep > 24) {
		return model.HealthLog{}, invalid(ErrInvalidHealthEntry, "sleep hours must be between 0 and 24")
	}
	if cmd.Calories != nil && *cmd.Calories < 0 {
		return model.HealthLog{}, invalid(ErrInvalidHealthEntry, "calories must not be negative")
	}
	for _, v := range []*float64{cmd.Sleep, cmd.Stress, cmd.Calories} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return model.HealthLog{}, invalid(ErrInvalidHealthEntry, "values must be finite")
		}
	}

	day := cmd.Day
	if day == "" {
		day = t.now().Format("Mon")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cmd.Sleep != nil {
		t.log.Sleep = roll(t.log.Sleep, model.HealthLogEntry{Day: day, Value: *cmd.Sleep})
	}
	if cmd.Stress != nil {
		stress := math.Min(10, math.Max(1, *cmd.Stress))
		t.log.Stress = roll(t.log.Stress, model.HealthLogEntry{Day: day, Value: stress})
	}
	if cmd.Calories != nil {
		t.log.Calories = roll(t.log.Calories, model.HealthLogEntry{Day: day, Value: *cmd.Calories})
	}

	return t.snapshot(), nil
}

// Log returns a copy of the current series
func (t *HealthTracker) Log() model.HealthLog {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot()
}

func (t *HealthTracker) snapshot() model.HealthLog {
	return model.HealthLog{
		Sleep:    append([]model.HealthLogEntry(nil), t.log.Sleep...),
		Stress:   append([]model.HealthLogEntry(nil), t.log.Stress...),
		Calories: append([]model.HealthLogEntry(nil), t.log.Calories...),
	}
}

func roll(series []model.HealthLogEntry, entry model.HealthLogEntry) []model.HealthLogEntry {
	out := make([]model.HealthLogEntry, 0, healthLogWindow)
	if len(series) >= healthLogWindow {
		series = series[len(series)-healthLogWindow+1:]
	}
	out = append(out, series...)
	return append(out, entry)
}
