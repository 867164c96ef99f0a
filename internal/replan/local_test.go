package replan

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalRequestReschedule(t *testing.T) {
	requester := NewLocalRequester()

	revised, err := requester.RequestReschedule(context.Background(), Request{
		DriftEventID:    7,
		ScheduleDate:    "2025-06-01",
		CurrentTime:     "10:30",
		RemainingBlocks: remainingFixture(),
	})
	if err != nil {
		t.Fatalf("RequestReschedule() error = %v", err)
	}

	if len(revised) != 2 {
		t.Fatalf("RequestReschedule() returned %d blocks, want 2", len(revised))
	}

	// The break starts late and gives up time so the lab keeps its slot
	if revised[0].StartTime != "10:30" || revised[0].EndTime != "11:00" {
		t.Errorf("revised[0] = %s-%s, want 10:30-11:00", revised[0].StartTime, revised[0].EndTime)
	}
	adj := revised[0].Adjustment
	if adj == nil || !adj.WasRescheduled || adj.OriginalStartTime != "10:00" || adj.DurationChangeMinutes != -30 {
		t.Errorf("revised[0] adjustment = %+v, want {true 10:00 -30}", adj)
	}

	if revised[1].StartTime != "11:00" || revised[1].EndTime != "12:00" {
		t.Errorf("revised[1] = %s-%s, want 11:00-12:00", revised[1].StartTime, revised[1].EndTime)
	}
	if revised[1].Adjustment != nil {
		t.Errorf("revised[1] adjustment = %+v, want none for an unmoved block", revised[1].Adjustment)
	}
}

func TestLocalEmptyRemaining(t *testing.T) {
	requester := NewLocalRequester()

	_, err := requester.RequestReschedule(context.Background(), Request{
		DriftEventID: 7,
		ScheduleDate: "2025-06-01",
		CurrentTime:  "10:30",
	})
	if !errors.Is(err, ErrNoRemainingBlocks) {
		t.Errorf("RequestReschedule() error = %v, want ErrNoRemainingBlocks", err)
	}
}

func TestLocalInvalidCurrentTime(t *testing.T) {
	requester := NewLocalRequester()

	_, err := requester.RequestReschedule(context.Background(), Request{
		DriftEventID:    7,
		ScheduleDate:    "2025-06-01",
		CurrentTime:     "half past ten",
		RemainingBlocks: remainingFixture(),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid current time") {
		t.Errorf("RequestReschedule() error = %v, want invalid current time", err)
	}
}

func TestLocalNothingFitsBeforeMidnight(t *testing.T) {
	requester := NewLocalRequester()

	_, err := requester.RequestReschedule(context.Background(), Request{
		DriftEventID:    7,
		ScheduleDate:    "2025-06-01",
		CurrentTime:     "23:59",
		RemainingBlocks: remainingFixture(),
	})
	if err == nil || !strings.Contains(err.Error(), "no time left") {
		t.Errorf("RequestReschedule() error = %v, want no time left", err)
	}
}
