package validation

import (
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictMissingTitle       ConflictType = "missing_title"
	ConflictOutOfOrder         ConflictType = "out_of_order"
	ConflictOverlappingBlocks  ConflictType = "overlapping_blocks"
	ConflictMultipleWraps      ConflictType = "multiple_midnight_wraps"
	ConflictInvalidAdjustment  ConflictType = "invalid_adjustment"
	ConflictZeroLengthSequence ConflictType = "empty_sequence"
)

// Conflict represents a detected problem in a block sequence
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Block titles involved
	TimeRange   string   // Human-readable time range (if applicable)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks block sequences for structural validity
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateBlocks checks one day's ordered block sequence: parseable times,
// non-empty titles, ascending start order, no overlaps, and at most one
// midnight-wrapping block, which must be the last of the day.
func (v *Validator) ValidateBlocks(blocks []models.TimeBlock) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	wraps := 0
	for i, block := range blocks {
		label := block.Title
		if label == "" {
			label = fmt.Sprintf("block %d", i+1)
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingTitle,
				Description: fmt.Sprintf("Block %d has no title", i+1),
			})
		}

		startOK := isValidTimeFormat(block.StartTime)
		endOK := isValidTimeFormat(block.EndTime)
		if !startOK {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("%q has invalid start time: %s", label, block.StartTime),
				Items:       []string{label},
			})
		}
		if !endOK {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("%q has invalid end time: %s", label, block.EndTime),
				Items:       []string{label},
			})
		}
		if !startOK || !endOK {
			continue
		}

		startMin, _ := parseTimeToMinutes(block.StartTime)
		endMin, _ := parseTimeToMinutes(block.EndTime)
		if endMin < startMin {
			wraps++
			if i != len(blocks)-1 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMultipleWraps,
					Description: fmt.Sprintf("%q wraps midnight but is not the last block of the day", label),
					Items:       []string{label},
					TimeRange:   fmt.Sprintf("%s-%s", block.StartTime, block.EndTime),
				})
			}
		}

		if block.Adjustment != nil && block.Adjustment.OriginalStartTime != "" &&
			!isValidTimeFormat(block.Adjustment.OriginalStartTime) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidAdjustment,
				Description: fmt.Sprintf("%q has invalid original start time: %s", label, block.Adjustment.OriginalStartTime),
				Items:       []string{label},
			})
		}
	}

	if wraps > 1 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMultipleWraps,
			Description: fmt.Sprintf("Day has %d midnight-wrapping blocks, at most one is allowed", wraps),
		})
	}

	// Pairwise order and overlap checks over blocks with parseable times.
	// A wrapping final block is exempt from the overlap check against the
	// following day.
	for i := 0; i < len(blocks)-1; i++ {
		cur, next := blocks[i], blocks[i+1]
		curStart, err1 := parseTimeToMinutes(cur.StartTime)
		curEnd, err2 := parseTimeToMinutes(cur.EndTime)
		nextStart, err3 := parseTimeToMinutes(next.StartTime)
		nextEnd, err4 := parseTimeToMinutes(next.EndTime)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		if curEnd < curStart {
			// Wrap before the final block is already reported above.
			continue
		}

		if nextStart < curStart {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOutOfOrder,
				Description: fmt.Sprintf("%q starts at %s before preceding block %q at %s", next.Title, next.StartTime, cur.Title, cur.StartTime),
				Items:       []string{cur.Title, next.Title},
			})
			continue
		}

		if nextEnd < nextStart {
			nextEnd += 24 * 60
		}
		if curStart < nextEnd && nextStart < curEnd {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverlappingBlocks,
				Description: fmt.Sprintf("%q (%s-%s) overlaps %q (%s-%s)", cur.Title, cur.StartTime, cur.EndTime, next.Title, next.StartTime, next.EndTime),
				Items:       []string{cur.Title, next.Title},
				TimeRange:   fmt.Sprintf("%s-%s", cur.StartTime, next.EndTime),
			})
		}
	}

	return result
}

// ValidateSchedule checks a full day: valid date plus a valid block sequence.
func (v *Validator) ValidateSchedule(sched models.DailySchedule) ValidationResult {
	if _, err := time.Parse(constants.DateFormat, sched.Date); err != nil {
		return ValidationResult{Conflicts: []Conflict{{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("Invalid schedule date: %s", sched.Date),
			Date:        sched.Date,
		}}}
	}
	result := v.ValidateBlocks(sched.Blocks)
	for i := range result.Conflicts {
		if result.Conflicts[i].Date == "" {
			result.Conflicts[i].Date = sched.Date
		}
	}
	return result
}

// ValidateReplan checks a re-planner's candidate list before it may be
// previewed or merged. The list must be non-empty and structurally valid.
func (v *Validator) ValidateReplan(revised []models.TimeBlock) ValidationResult {
	if len(revised) == 0 {
		return ValidationResult{Conflicts: []Conflict{{
			Type:        ConflictZeroLengthSequence,
			Description: "Re-plan contains no blocks",
		}}}
	}
	return v.ValidateBlocks(revised)
}

func isValidTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

func parseTimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
