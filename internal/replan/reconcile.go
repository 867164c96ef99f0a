package replan

import (
	"fmt"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
	"github.com/Chabota512/forge-drift/internal/validation"
)

// annotateAdjustments fills in adjustment metadata on revised blocks that a
// re-planner returned without it. A block counts as changed when its start
// time or duration differs from the original block of the same title.
// Blocks the planner already annotated are left alone.
func annotateAdjustments(original, revised []models.TimeBlock) []models.TimeBlock {
	byTitle := make(map[string]models.TimeBlock, len(original))
	for _, block := range original {
		if _, ok := byTitle[block.Title]; !ok {
			byTitle[block.Title] = block
		}
	}

	out := make([]models.TimeBlock, len(revised))
	for i, block := range revised {
		out[i] = block
		if block.Adjustment != nil {
			continue
		}
		orig, ok := byTitle[block.Title]
		if !ok {
			continue
		}

		startChanged := block.StartTime != orig.StartTime
		durationDelta := 0
		newDur, newErr := utils.BlockDurationMinutes(block.StartTime, block.EndTime)
		oldDur, oldErr := utils.BlockDurationMinutes(orig.StartTime, orig.EndTime)
		if newErr == nil && oldErr == nil {
			durationDelta = newDur - oldDur
		}

		if !startChanged && durationDelta == 0 {
			continue
		}

		adjustment := &models.BlockAdjustment{
			WasRescheduled:    true,
			OriginalStartTime: orig.StartTime,
		}
		if durationDelta != 0 {
			adjustment.DurationChangeMinutes = durationDelta
		}
		out[i].Adjustment = adjustment
	}
	return out
}

// checkRevised rejects a re-planner response whose blocks do not form a
// coherent day remainder.
func checkRevised(revised []models.TimeBlock) error {
	result := validation.New().ValidateReplan(revised)
	if result.HasConflicts() {
		return fmt.Errorf("re-planner returned an invalid schedule: %s", result.FormatReport())
	}
	return nil
}
