package cli

import (
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/drift"
	"github.com/Chabota512/forge-drift/internal/utils"
)

type CompleteCmd struct {
	Title  string `arg:"" help:"Title of the block that just finished."`
	Actual int    `required:"" help:"Actual duration in minutes."`
	Date   string `help:"Schedule date (YYYY-MM-DD or 'today')." default:"today"`
	At     string `help:"Completion time (HH:MM). Defaults to the current clock."`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	nowMinutes := utils.MinutesSinceMidnight(time.Now())
	if c.At != "" {
		nowMinutes, err = utils.ParseTimeToMinutes(c.At)
		if err != nil {
			return fmt.Errorf("invalid --at time: %w", err)
		}
	}

	ctx.PerformAutomaticBackup()

	detector := drift.NewDetector(ctx.Store, ctx.Config.Drift.ThresholdMinutes)
	event, created, err := detector.RecordCompletion(date, c.Title, c.Actual, nowMinutes)
	if err != nil {
		return err
	}

	if !created {
		fmt.Printf("Recorded %q: %s actual, within the %dm drift threshold. No event created.\n",
			c.Title, utils.FormatDriftDuration(c.Actual), detector.Threshold())
		return nil
	}

	fmt.Printf("Drift event #%d created for %q:\n\n", event.ID, event.BlockTitle)
	fmt.Printf("  Planned:  %s\n", utils.FormatDriftDuration(event.PlannedDurationMinutes))
	fmt.Printf("  Actual:   %s\n", utils.FormatDriftDuration(event.ActualDurationMinutes))
	fmt.Printf("  Overrun:  +%s\n", utils.FormatDriftDuration(event.DriftMinutes()))
	fmt.Printf("  Day total %s, %d remaining blocks affected.\n\n",
		utils.FormatDriftDuration(event.CumulativeDriftMinutes), event.AffectedBlocksCount)
	fmt.Printf("Resolve it with: forge-drift resolve %d --choice ai|manual|dismissed\n", event.ID)

	return nil
}
