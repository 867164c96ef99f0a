package scheduler

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/Chabota512/forge-drift/internal/models"
)

func block(start, end, title string, blockType models.BlockType) models.TimeBlock {
	return models.TimeBlock{
		StartTime: start,
		EndTime:   end,
		Type:      blockType,
		Title:     title,
		Priority:  2,
	}
}

func renderDay(blocks []models.TimeBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.StartTime + "-" + b.EndTime + " " + b.Title
	}
	return strings.Join(parts, ", ")
}

func TestReschedule(t *testing.T) {
	tests := []struct {
		name       string
		blocks     []models.TimeBlock
		nowMinutes int
		want       string
	}{
		{
			name: "on time day is untouched",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:30", "11:30", "Lab", models.BlockTypeMission),
			},
			nowMinutes: 8*60 + 30,
			want:       "09:00-10:00 Study, 10:30-11:30 Lab",
		},
		{
			name: "delay pushes rigid blocks past the planned end",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:00", "11:00", "Lecture", models.BlockTypeLecture),
			},
			nowMinutes: 9*60 + 15,
			want:       "09:15-10:15 Study, 10:15-11:15 Lecture",
		},
		{
			name: "planned gap absorbs the delay",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:30", "11:30", "Lab", models.BlockTypeMission),
			},
			nowMinutes: 9*60 + 20,
			want:       "09:20-10:20 Study, 10:30-11:30 Lab",
		},
		{
			name: "break gives up time to keep the planned end",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:00", "10:30", "Break", models.BlockTypeBreak),
				block("10:30", "11:30", "Lab", models.BlockTypeMission),
			},
			nowMinutes: 9*60 + 20,
			want:       "09:20-10:20 Study, 10:20-10:30 Break, 10:30-11:30 Lab",
		},
		{
			name: "free time squeezed to nothing is dropped",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:00", "10:20", "Slack", models.BlockTypeFreeTime),
				block("10:20", "11:20", "Lecture", models.BlockTypeLecture),
			},
			nowMinutes: 9*60 + 30,
			want:       "09:30-10:30 Study, 10:30-11:30 Lecture",
		},
		{
			name: "in progress break gives up its tail",
			blocks: []models.TimeBlock{
				block("10:00", "11:00", "Break", models.BlockTypeBreak),
			},
			nowMinutes: 10*60 + 30,
			want:       "10:30-11:00 Break",
		},
		{
			name: "short break below the floor is not shrunk",
			blocks: []models.TimeBlock{
				block("09:00", "10:00", "Study", models.BlockTypeStudy),
				block("10:00", "10:05", "Stretch", models.BlockTypeBreak),
				block("10:05", "11:05", "Lab", models.BlockTypeMission),
			},
			nowMinutes: 9*60 + 10,
			want:       "09:10-10:10 Study, 10:10-10:15 Stretch, 10:15-11:15 Lab",
		},
		{
			name: "last block is clipped at midnight",
			blocks: []models.TimeBlock{
				block("23:00", "23:30", "Study", models.BlockTypeStudy),
				block("23:30", "23:55", "Review", models.BlockTypeLecture),
			},
			nowMinutes: 23*60 + 20,
			want:       "23:20-23:50 Study, 23:50-23:59 Review",
		},
		{
			name: "blocks pushed out of the day are dropped",
			blocks: []models.TimeBlock{
				block("23:00", "23:50", "Study", models.BlockTypeStudy),
				block("23:50", "23:59", "Snack", models.BlockTypeMeal),
			},
			nowMinutes: 23*60 + 40,
			want:       "23:40-23:59 Study",
		},
		{
			name: "midnight wrapping final block is clipped",
			blocks: []models.TimeBlock{
				block("23:00", "23:30", "Study", models.BlockTypeStudy),
				block("23:30", "00:30", "Late mission", models.BlockTypeMission),
			},
			nowMinutes: 23 * 60,
			want:       "23:00-23:30 Study, 23:30-23:59 Late mission",
		},
	}

	planner := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planner.Reschedule(tt.blocks, tt.nowMinutes)
			if err != nil {
				t.Fatalf("Reschedule failed: %v", err)
			}
			if renderDay(got) != tt.want {
				t.Errorf("Reschedule() = %s, want %s", renderDay(got), tt.want)
			}
		})
	}
}

func TestReschedule_EmptyDay(t *testing.T) {
	planner := New()
	got, err := planner.Reschedule(nil, 600)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no blocks, got %d", len(got))
	}
}

func TestReschedule_ClearsOldAnnotations(t *testing.T) {
	moved := block("09:00", "10:00", "Study", models.BlockTypeStudy)
	moved.Adjustment = &models.BlockAdjustment{
		WasRescheduled:    true,
		OriginalStartTime: "08:30",
	}

	planner := New()
	got, err := planner.Reschedule([]models.TimeBlock{moved}, 9*60+10)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(got))
	}
	if got[0].Adjustment != nil {
		t.Errorf("Expected stale adjustment to be cleared, got %+v", got[0].Adjustment)
	}
}

func TestReschedule_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		blocks     []models.TimeBlock
		nowMinutes int
	}{
		{
			name:       "invalid start time",
			blocks:     []models.TimeBlock{block("9am", "10:00", "Study", models.BlockTypeStudy)},
			nowMinutes: 600,
		},
		{
			name:       "invalid end time",
			blocks:     []models.TimeBlock{block("09:00", "24:30", "Study", models.BlockTypeStudy)},
			nowMinutes: 600,
		},
		{
			name: "wrapping block in the middle of the day",
			blocks: []models.TimeBlock{
				block("23:30", "00:30", "Late mission", models.BlockTypeMission),
				block("00:30", "01:00", "Snack", models.BlockTypeMeal),
			},
			nowMinutes: 23 * 60,
		},
		{
			name:       "now before the day",
			blocks:     []models.TimeBlock{block("09:00", "10:00", "Study", models.BlockTypeStudy)},
			nowMinutes: -1,
		},
		{
			name:       "now past the day",
			blocks:     []models.TimeBlock{block("09:00", "10:00", "Study", models.BlockTypeStudy)},
			nowMinutes: 24 * 60,
		},
	}

	planner := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := planner.Reschedule(tt.blocks, tt.nowMinutes); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// generateRemainder produces an ordered, non-overlapping remainder of a day
// with a mix of rigid and flexible block types.
func generateRemainder(t *rapid.T) []models.TimeBlock {
	count := rapid.IntRange(1, 10).Draw(t, "count")
	types := []models.BlockType{
		models.BlockTypeStudy,
		models.BlockTypeLecture,
		models.BlockTypeMission,
		models.BlockTypeMeal,
		models.BlockTypeBreak,
		models.BlockTypeFreeTime,
	}

	blocks := make([]models.TimeBlock, 0, count)
	cursor := rapid.IntRange(300, 900).Draw(t, "day_start")
	for i := 0; i < count; i++ {
		gap := rapid.IntRange(0, 30).Draw(t, "gap")
		duration := rapid.IntRange(5, 90).Draw(t, "duration")

		start := cursor + gap
		end := start + duration
		if end > lastMinuteOfDay {
			break
		}

		blocks = append(blocks, models.TimeBlock{
			StartTime: formatTime(start),
			EndTime:   formatTime(end),
			Type:      rapid.SampledFrom(types).Draw(t, "type"),
			Title:     fmt.Sprintf("%s %d", rapid.StringMatching(`[A-Za-z]{1,10}`).Draw(t, "title"), i),
			Priority:  rapid.IntRange(0, 5).Draw(t, "priority"),
		})
		cursor = end
	}
	return blocks
}

// The revised day starts no earlier than now, stays ordered and
// non-overlapping, and never runs past the end of the day.
func TestReschedule_KeepsDayCoherent(t *testing.T) {
	planner := New()
	rapid.Check(t, func(t *rapid.T) {
		blocks := generateRemainder(t)
		now := rapid.IntRange(0, lastMinuteOfDay).Draw(t, "now")

		revised, err := planner.Reschedule(blocks, now)
		if err != nil {
			t.Fatalf("Reschedule failed: %v", err)
		}

		cursor := now
		for _, b := range revised {
			start, err := parseTime(b.StartTime)
			if err != nil {
				t.Fatalf("Revised block has unparseable start %q", b.StartTime)
			}
			end, err := parseTime(b.EndTime)
			if err != nil {
				t.Fatalf("Revised block has unparseable end %q", b.EndTime)
			}
			if start < cursor {
				t.Fatalf("Block %q starts at %d before cursor %d", b.Title, start, cursor)
			}
			if end <= start {
				t.Fatalf("Block %q is empty or inverted: %d-%d", b.Title, start, end)
			}
			if end > lastMinuteOfDay {
				t.Fatalf("Block %q runs past midnight, ends at %d", b.Title, end)
			}
			cursor = end
		}
	})
}

// Rigid block types keep their planned duration unless clipped at the end
// of the day, and no block ever grows.
func TestReschedule_RespectsDurations(t *testing.T) {
	planner := New()
	rapid.Check(t, func(t *rapid.T) {
		blocks := generateRemainder(t)
		now := rapid.IntRange(0, lastMinuteOfDay).Draw(t, "now")

		revised, err := planner.Reschedule(blocks, now)
		if err != nil {
			t.Fatalf("Reschedule failed: %v", err)
		}

		planned := make(map[string]int, len(blocks))
		rigid := make(map[string]bool, len(blocks))
		for _, b := range blocks {
			start, _ := parseTime(b.StartTime)
			end, _ := parseTime(b.EndTime)
			planned[b.Title] = end - start
			rigid[b.Title] = b.Type != models.BlockTypeBreak && b.Type != models.BlockTypeFreeTime
		}

		for _, b := range revised {
			start, _ := parseTime(b.StartTime)
			end, _ := parseTime(b.EndTime)
			got := end - start

			want, ok := planned[b.Title]
			if !ok {
				continue
			}
			if got > want {
				t.Fatalf("Block %q grew from %dm to %dm", b.Title, want, got)
			}
			if rigid[b.Title] && got < want && end != lastMinuteOfDay {
				t.Fatalf("Rigid block %q shrank from %dm to %dm without hitting midnight", b.Title, want, got)
			}
		}
	})
}
