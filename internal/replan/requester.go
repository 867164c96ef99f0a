// Package replan defines the boundary to the re-planner and its
// implementations: the forge-backend sidecar, the Gemini API, and a
// deterministic local planner for offline use.
package replan

import (
	"context"
	"errors"

	"github.com/Chabota512/forge-drift/internal/models"
)

// ErrNoRemainingBlocks signals that the day has nothing left to reschedule.
// Callers must check before requesting so no network call is made for an
// empty day.
var ErrNoRemainingBlocks = errors.New("no remaining blocks to reschedule")

// Request carries the remainder of a drifted day to the re-planner.
type Request struct {
	DriftEventID    int64              `json:"driftEventId"`
	ScheduleDate    string             `json:"scheduleDate"`
	CurrentTime     string             `json:"currentTime"` // HH:MM format
	RemainingBlocks []models.TimeBlock `json:"remainingBlocks"`
}

// Response is the wire envelope a re-planner answers with.
type Response struct {
	RescheduledBlocks []models.TimeBlock `json:"rescheduledBlocks"`
}

// Requester produces a revised block sequence for the rest of the day.
// Implementations are fallible and never retried automatically; a failed
// request leaves no state behind.
type Requester interface {
	RequestReschedule(ctx context.Context, req Request) ([]models.TimeBlock, error)
}
