package cli

import (
	"fmt"

	"github.com/Chabota512/forge-drift/internal/utils"
)

type StatusCmd struct {
	Date string `help:"Date to check (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *StatusCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	pending, err := ctx.Tracker.Pending(date)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Printf("No pending drift for %s. Schedule is on track.\n", date)
		return nil
	}

	// Per-date drift accumulates monotonically until resolution, so the
	// largest pending total is the day's current drift.
	cumulative := 0
	for _, event := range pending {
		if event.CumulativeDriftMinutes > cumulative {
			cumulative = event.CumulativeDriftMinutes
		}
	}

	next, ok, err := ctx.Tracker.Next(date)
	if err != nil {
		return err
	}

	fmt.Printf("Drift status for %s\n\n", date)
	fmt.Printf("  Pending events:   %d\n", len(pending))
	if ok {
		fmt.Printf("  Next to surface:  #%d %s (+%s over plan)\n",
			next.ID, next.BlockTitle, utils.FormatDriftDuration(next.DriftMinutes()))
	}
	fmt.Printf("  Cumulative drift: %s\n", utils.FormatDriftDuration(cumulative))

	return nil
}
