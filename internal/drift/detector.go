package drift

import (
	"fmt"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/schedule"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// Detector turns block completions into drift events. A completion only
// becomes an event when the actual duration exceeds the plan by more than
// the threshold.
type Detector struct {
	store     storage.Provider
	threshold int
}

func NewDetector(store storage.Provider, thresholdMinutes int) *Detector {
	return &Detector{
		store:     store,
		threshold: thresholdMinutes,
	}
}

// RecordCompletion measures a just-finished block against its planned
// duration. nowMinutes is the completion wall-clock time in minutes since
// midnight; it fixes which later blocks count as affected. Returns the
// created event and true when drift crossed the threshold, false otherwise.
func (d *Detector) RecordCompletion(date, blockTitle string, actualMinutes, nowMinutes int) (models.DriftEvent, bool, error) {
	if actualMinutes < 0 {
		return models.DriftEvent{}, false, fmt.Errorf("actual duration cannot be negative: %d", actualMinutes)
	}

	daySchedule, err := d.store.GetSchedule(date)
	if err != nil {
		return models.DriftEvent{}, false, err
	}

	var block models.TimeBlock
	found := false
	for _, b := range daySchedule.Blocks {
		if b.Title == blockTitle {
			block = b
			found = true
			break
		}
	}
	if !found {
		return models.DriftEvent{}, false, fmt.Errorf("no block titled %q in schedule for %s", blockTitle, date)
	}

	planned, err := utils.BlockDurationMinutes(block.StartTime, block.EndTime)
	if err != nil {
		return models.DriftEvent{}, false, fmt.Errorf("block %q has invalid times: %w", blockTitle, err)
	}

	overrun := actualMinutes - planned
	if overrun <= d.threshold {
		return models.DriftEvent{}, false, nil
	}

	cumulative := overrun
	unresolved, err := d.store.ListUnresolvedDriftEvents(date)
	if err != nil {
		return models.DriftEvent{}, false, err
	}
	for _, event := range unresolved {
		if event.CumulativeDriftMinutes+overrun > cumulative {
			cumulative = event.CumulativeDriftMinutes + overrun
		}
	}

	affected := len(schedule.Split(daySchedule.Blocks, nowMinutes).Remaining)

	created, err := d.store.CreateDriftEvent(models.DriftEvent{
		ScheduleDate:           date,
		BlockTitle:             block.Title,
		BlockStartTime:         block.StartTime,
		PlannedDurationMinutes: planned,
		ActualDurationMinutes:  actualMinutes,
		CumulativeDriftMinutes: cumulative,
		AffectedBlocksCount:    affected,
	})
	if err != nil {
		return models.DriftEvent{}, false, err
	}
	return created, true, nil
}

// Threshold returns the configured drift threshold in minutes.
func (d *Detector) Threshold() int {
	return d.threshold
}
