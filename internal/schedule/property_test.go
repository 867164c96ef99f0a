package schedule_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/schedule"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// generateDay produces an ordered, non-overlapping, non-wrapping day of
// blocks, the shape the partition properties are stated over.
func generateDay(t *rapid.T) []models.TimeBlock {
	count := rapid.IntRange(0, 12).Draw(t, "count")
	blocks := make([]models.TimeBlock, 0, count)

	cursor := rapid.IntRange(0, 300).Draw(t, "day_start")
	for i := 0; i < count; i++ {
		gap := rapid.IntRange(0, 45).Draw(t, "gap")
		duration := rapid.IntRange(5, 120).Draw(t, "duration")

		start := cursor + gap
		end := start + duration
		if end > 1439 {
			break
		}

		block := models.TimeBlock{
			StartTime: utils.FormatMinutes(start),
			EndTime:   utils.FormatMinutes(end),
			Type:      models.BlockTypeStudy,
			Title:     rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(t, "title"),
			Priority:  rapid.IntRange(0, 5).Draw(t, "priority"),
		}
		if rapid.Bool().Draw(t, "has_adjustment") {
			block.Adjustment = &models.BlockAdjustment{
				WasRescheduled:        true,
				OriginalStartTime:     block.StartTime,
				DurationChangeMinutes: rapid.IntRange(-60, 0).Draw(t, "duration_change"),
			}
		}

		blocks = append(blocks, block)
		cursor = end
	}
	return blocks
}

func sameBlock(a, b models.TimeBlock) bool {
	if a.StartTime != b.StartTime || a.EndTime != b.EndTime || a.Title != b.Title {
		return false
	}
	if (a.Adjustment == nil) != (b.Adjustment == nil) {
		return false
	}
	if a.Adjustment != nil && *a.Adjustment != *b.Adjustment {
		return false
	}
	return true
}

// Splitting a day loses nothing, duplicates nothing, and keeps order: the
// concatenation of past and remaining is exactly the input day.
func TestSplitRecoversDay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		day := generateDay(t)
		now := rapid.IntRange(0, 1439).Draw(t, "now")

		p := schedule.Split(day, now)

		if got := len(p.Past) + len(p.Remaining); got != len(day) {
			t.Fatalf("Split() sizes: past %d + remaining %d = %d, want %d",
				len(p.Past), len(p.Remaining), got, len(day))
		}

		recovered := schedule.Merge(p.Past, p.Remaining)
		for i, block := range day {
			if !sameBlock(recovered[i], block) {
				t.Fatalf("Split()+Merge() block %d = %+v, want %+v", i, recovered[i], block)
			}
		}
	})
}

// Every past block ends strictly before now; every remaining block ends at
// or after now.
func TestSplitRespectsThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		day := generateDay(t)
		now := rapid.IntRange(0, 1439).Draw(t, "now")

		p := schedule.Split(day, now)

		for _, block := range p.Past {
			end, err := utils.ParseTimeToMinutes(block.EndTime)
			if err != nil {
				t.Fatalf("past block has unparseable end %q", block.EndTime)
			}
			if end >= now {
				t.Fatalf("past block %q ends at %d, now %d", block.Title, end, now)
			}
		}
		for _, block := range p.Remaining {
			end, err := utils.ParseTimeToMinutes(block.EndTime)
			if err != nil {
				t.Fatalf("remaining block has unparseable end %q", block.EndTime)
			}
			if end < now {
				t.Fatalf("remaining block %q ends at %d before now %d", block.Title, end, now)
			}
		}
	})
}

// Merge keeps each side's internal order and never invents or drops blocks.
func TestMergePreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		past := generateDay(t)
		revised := generateDay(t)

		merged := schedule.Merge(past, revised)

		if len(merged) != len(past)+len(revised) {
			t.Fatalf("Merge() length = %d, want %d", len(merged), len(past)+len(revised))
		}
		for i, block := range past {
			if !sameBlock(merged[i], block) {
				t.Fatalf("Merge() reordered past at %d: got %+v, want %+v", i, merged[i], block)
			}
		}
		for i, block := range revised {
			if !sameBlock(merged[len(past)+i], block) {
				t.Fatalf("Merge() reordered revised at %d: got %+v, want %+v", i, merged[len(past)+i], block)
			}
		}
	})
}
