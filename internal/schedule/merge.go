package schedule

import "github.com/Chabota512/forge-drift/internal/models"

// Merge builds the full replacement sequence for a day: the kept past blocks
// followed by the revised remainder, in that order. It performs no
// reordering and no overlap checks; the caller guarantees past ends before
// the revised blocks begin by partitioning both sides with one shared now
// snapshot. Adjustment metadata on revised blocks passes through untouched.
func Merge(past, revised []models.TimeBlock) []models.TimeBlock {
	merged := make([]models.TimeBlock, 0, len(past)+len(revised))
	merged = append(merged, past...)
	merged = append(merged, revised...)
	return merged
}
