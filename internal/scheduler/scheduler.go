// Package scheduler holds the deterministic re-planner: a pure block
// placement algorithm that pushes a drifted day's remaining blocks forward
// and claws time back from flexible blocks. It is the offline counterpart
// to the AI re-planners.
package scheduler

import (
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/models"
)

const (
	// minBreakMinutes is the shortest a break may be squeezed to.
	minBreakMinutes = 10
	// lastMinuteOfDay caps every block at 23:59; nothing wraps past midnight.
	lastMinuteOfDay = 24*60 - 1
)

type Replanner struct{}

func New() *Replanner {
	return &Replanner{}
}

// Reschedule shifts blocks so that nothing starts before nowMinutes and
// blocks never overlap, preserving order and durations. When the shift
// would push the day past its planned end, flexible blocks (breaks and
// free time) are shortened, earliest first, to absorb the delay: breaks
// down to a floor, free time down to nothing. Blocks squeezed to zero
// length are dropped. Anything that would start at or after midnight is
// dropped, and the final block is clipped to 23:59.
func (r *Replanner) Reschedule(blocks []models.TimeBlock, nowMinutes int) ([]models.TimeBlock, error) {
	if nowMinutes < 0 || nowMinutes > lastMinuteOfDay {
		return nil, fmt.Errorf("current time %d is outside the day", nowMinutes)
	}

	// Step 1: measure every block
	type placement struct {
		block    models.TimeBlock
		duration int
	}
	placements := make([]placement, 0, len(blocks))
	for i, block := range blocks {
		start, err := parseTime(block.StartTime)
		if err != nil {
			return nil, fmt.Errorf("block %q has invalid start time: %w", block.Title, err)
		}
		end, err := parseTime(block.EndTime)
		if err != nil {
			return nil, fmt.Errorf("block %q has invalid end time: %w", block.Title, err)
		}
		if end < start {
			// Only the last block of a day may wrap midnight; it gets laid
			// out with its full length and clipped to 23:59 below.
			if i != len(blocks)-1 {
				return nil, fmt.Errorf("block %q ends before it starts", block.Title)
			}
			end += 24 * 60
		}
		placements = append(placements, placement{block: block, duration: end - start})
	}

	// Step 2: walk the day once to find how far the plain shift overshoots
	// the planned end
	overshoot := 0
	if len(placements) > 0 {
		cursor := nowMinutes
		for _, p := range placements {
			start, _ := parseTime(p.block.StartTime)
			if start > cursor {
				// A gap in the original plan absorbs delay for free
				cursor = start
			}
			cursor += p.duration
		}
		last := placements[len(placements)-1]
		lastStart, _ := parseTime(last.block.StartTime)
		overshoot = cursor - (lastStart + last.duration)
	}

	// Step 3: shorten flexible blocks, earliest first, until the overshoot
	// is absorbed
	for i := range placements {
		if overshoot <= 0 {
			break
		}
		var floor int
		switch placements[i].block.Type {
		case models.BlockTypeBreak:
			floor = minBreakMinutes
		case models.BlockTypeFreeTime:
			floor = 0
		default:
			continue
		}
		give := placements[i].duration - floor
		if give <= 0 {
			continue
		}
		if give > overshoot {
			give = overshoot
		}
		placements[i].duration -= give
		overshoot -= give
	}

	// Step 4: lay the blocks back down from now, keeping original starts
	// where the plan is not behind
	revised := make([]models.TimeBlock, 0, len(placements))
	cursor := nowMinutes
	for _, p := range placements {
		if p.duration == 0 {
			continue
		}
		start, _ := parseTime(p.block.StartTime)
		if start < cursor {
			start = cursor
		}
		if start >= lastMinuteOfDay {
			break
		}
		end := start + p.duration
		if end > lastMinuteOfDay {
			end = lastMinuteOfDay
		}

		block := p.block
		block.StartTime = formatTime(start)
		block.EndTime = formatTime(end)
		// Annotations describe the previous replace and die with it
		block.Adjustment = nil
		revised = append(revised, block)
		cursor = end
	}

	return revised, nil
}

func parseTime(timeStr string) (int, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatTime(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	return fmt.Sprintf("%02d:%02d", hours, mins)
}
