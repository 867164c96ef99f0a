package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/utils"
	"github.com/Chabota512/forge-drift/internal/validation"
)

type ScheduleShowCmd struct {
	Date string `help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
	JSON bool   `help:"Print the schedule as JSON."`
}

func (c *ScheduleShowCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Store.GetSchedule(date)
	if err != nil {
		if errors.Is(err, storage.ErrNoSchedule) {
			fmt.Printf("No schedule for %s. Seed one with 'forge-drift schedule set --file day.json'.\n", date)
			return nil
		}
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(day, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Schedule for %s (%d blocks, generated %s):\n\n",
		day.Date, len(day.Blocks), day.GeneratedAt.Format("2006-01-02 15:04"))
	for _, block := range day.Blocks {
		line := fmt.Sprintf("  %s-%s  %-20s %-10s p%d",
			block.StartTime, block.EndTime, block.Title, block.Type, block.Priority)
		if adj := block.Adjustment; adj != nil && adj.WasRescheduled {
			note := fmt.Sprintf("was %s", adj.OriginalStartTime)
			if adj.DurationChangeMinutes != 0 {
				note += fmt.Sprintf(", %+dm", adj.DurationChangeMinutes)
			}
			line += "  (" + note + ")"
		}
		fmt.Println(line)
	}

	return nil
}

type ScheduleSetCmd struct {
	File string `required:"" type:"existingfile" help:"JSON file holding the day: either a full schedule object or a bare block array."`
	Date string `help:"Date to write (YYYY-MM-DD or 'today'). Overrides the date in the file."`
}

func (c *ScheduleSetCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	var day models.DailySchedule
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if err := json.Unmarshal(data, &day.Blocks); err != nil {
			return fmt.Errorf("failed to parse %s as a block array: %w", c.File, err)
		}
	} else {
		if err := json.Unmarshal(data, &day); err != nil {
			return fmt.Errorf("failed to parse %s as a schedule: %w", c.File, err)
		}
	}

	if c.Date != "" {
		day.Date, err = ResolveDate(c.Date)
		if err != nil {
			return err
		}
	}
	if day.Date == "" {
		day.Date = utils.Today()
	}
	if !utils.ValidateDateFormat(day.Date) {
		return fmt.Errorf("invalid date %q in %s, use YYYY-MM-DD", day.Date, c.File)
	}
	if len(day.Blocks) == 0 {
		return fmt.Errorf("%s holds no blocks", c.File)
	}

	result := validation.New().ValidateSchedule(day)
	if result.HasConflicts() {
		fmt.Println(result.FormatReport())
		return fmt.Errorf("schedule has %d conflict(s)", len(result.Conflicts))
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Store.SaveSchedule(day.Date, day.Blocks); err != nil {
		return err
	}

	fmt.Printf("✓ Schedule for %s saved (%d blocks).\n", day.Date, len(day.Blocks))
	return nil
}
