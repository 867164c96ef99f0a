package replan

import (
	"context"
	"fmt"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/scheduler"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// LocalRequester replans with the deterministic algorithm in the scheduler
// package. It needs no network and no API key, so it works offline and
// serves machines where neither the sidecar nor Gemini is configured.
type LocalRequester struct {
	planner *scheduler.Replanner
}

func NewLocalRequester() *LocalRequester {
	return &LocalRequester{planner: scheduler.New()}
}

func (r *LocalRequester) RequestReschedule(ctx context.Context, req Request) ([]models.TimeBlock, error) {
	if len(req.RemainingBlocks) == 0 {
		return nil, ErrNoRemainingBlocks
	}

	nowMinutes, err := utils.ParseTimeToMinutes(req.CurrentTime)
	if err != nil {
		return nil, fmt.Errorf("invalid current time %q: %w", req.CurrentTime, err)
	}

	rescheduled, err := r.planner.Reschedule(req.RemainingBlocks, nowMinutes)
	if err != nil {
		return nil, err
	}
	if len(rescheduled) == 0 {
		return nil, fmt.Errorf("no time left today to place the remaining blocks")
	}

	revised := annotateAdjustments(req.RemainingBlocks, rescheduled)
	if err := checkRevised(revised); err != nil {
		return nil, err
	}
	return revised, nil
}
