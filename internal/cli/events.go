package cli

import (
	"fmt"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
)

type EventsCmd struct {
	Date string `help:"Date to list (YYYY-MM-DD or 'today')." default:"today"`
	All  bool   `help:"Include resolved events."`
}

func (c *EventsCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	var events []models.DriftEvent
	if c.All {
		events, err = ctx.Store.ListDriftEvents(date)
	} else {
		events, err = ctx.Store.ListUnresolvedDriftEvents(date)
	}
	if err != nil {
		return err
	}

	if len(events) == 0 {
		if c.All {
			fmt.Printf("No drift events for %s.\n", date)
		} else {
			fmt.Printf("No unresolved drift events for %s.\n", date)
		}
		return nil
	}

	label := "unresolved"
	if c.All {
		label = "total"
	}
	fmt.Printf("Drift events for %s (%d %s):\n\n", date, len(events), label)

	for _, event := range events {
		marker := " "
		if event.Resolved {
			marker = "✓"
		}
		fmt.Printf("  #%-4d %s %s  %-20s +%s over plan  (planned %s, actual %s)\n",
			event.ID, marker, event.BlockStartTime, event.BlockTitle,
			utils.FormatDriftDuration(event.DriftMinutes()),
			utils.FormatDriftDuration(event.PlannedDurationMinutes),
			utils.FormatDriftDuration(event.ActualDurationMinutes))
		if event.Resolved {
			fmt.Printf("        resolved: %s\n", event.UserChoice)
		} else {
			fmt.Printf("        day total %s, %d remaining blocks affected\n",
				utils.FormatDriftDuration(event.CumulativeDriftMinutes),
				event.AffectedBlocksCount)
		}
	}

	return nil
}
