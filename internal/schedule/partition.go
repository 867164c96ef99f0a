// Package schedule holds the pure time arithmetic of the drift engine:
// splitting a day at the current wall-clock minute and rebuilding a day from
// its kept past and a revised remainder.
package schedule

import (
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// Partition is the result of splitting a day's blocks at a point in time.
type Partition struct {
	Past      []models.TimeBlock
	Remaining []models.TimeBlock
}

// Split divides blocks into past and remaining relative to nowMinutes
// (minutes since midnight). A block is past only when its end lies strictly
// before now; everything else, including a block currently in progress, is
// remaining. Every input block lands in exactly one half.
//
// A block whose end precedes its start wraps midnight; its end is pushed a
// day forward for the comparison, so it stays remaining for the whole
// calendar day it starts on. Blocks with unparseable times are kept in
// remaining rather than dropped.
//
// Callers that split once to request a re-plan and again to apply it must
// reuse the same nowMinutes snapshot for both calls.
func Split(blocks []models.TimeBlock, nowMinutes int) Partition {
	var p Partition
	for _, block := range blocks {
		if isPast(block, nowMinutes) {
			p.Past = append(p.Past, block)
		} else {
			p.Remaining = append(p.Remaining, block)
		}
	}
	return p
}

// SplitAt is Split with now given as an HH:MM string.
func SplitAt(blocks []models.TimeBlock, now string) (Partition, error) {
	nowMinutes, err := utils.ParseTimeToMinutes(now)
	if err != nil {
		return Partition{}, err
	}
	return Split(blocks, nowMinutes), nil
}

func isPast(block models.TimeBlock, nowMinutes int) bool {
	startMin, err := utils.ParseTimeToMinutes(block.StartTime)
	if err != nil {
		return false
	}
	endMin, err := utils.ParseTimeToMinutes(block.EndTime)
	if err != nil {
		return false
	}
	if endMin < startMin {
		endMin += 24 * 60
	}
	return endMin < nowMinutes
}
