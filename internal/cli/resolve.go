package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/replan"
	"github.com/Chabota512/forge-drift/internal/resolution"
	"github.com/Chabota512/forge-drift/internal/utils"
)

type ResolveCmd struct {
	ID     int64  `arg:"" help:"Drift event id to resolve."`
	Choice string `required:"" enum:"ai,manual,dismissed" help:"Resolution choice: ai, manual, or dismissed."`
	Yes    bool   `help:"Apply an AI reschedule without asking for confirmation."`
}

func (c *ResolveCmd) Run(ctx *Context) error {
	event, err := ctx.Store.GetDriftEvent(c.ID)
	if err != nil {
		return err
	}
	if event.Resolved {
		fmt.Printf("Event #%d is already resolved (%s).\n", event.ID, event.UserChoice)
		return nil
	}

	day, err := ctx.Store.GetSchedule(event.ScheduleDate)
	if err != nil {
		return err
	}

	var requester replan.Requester
	if c.Choice == string(models.ChoiceAI) {
		requester, err = ctx.NewRequester(context.Background())
		if err != nil {
			return err
		}
	}

	ctx.PerformAutomaticBackup()

	machine, err := resolution.NewMachine(ctx.Store, requester, event, day, utils.FormatClock(time.Now()))
	if err != nil {
		return err
	}

	switch models.ResolutionChoice(c.Choice) {
	case models.ChoiceDismissed:
		machine.Dismiss()
		// Dismiss never blocks the flow on a store failure, so confirm
		// the write before reporting success.
		updated, err := ctx.Store.GetDriftEvent(c.ID)
		if err != nil {
			return err
		}
		if !updated.Resolved {
			return fmt.Errorf("dismissal of event #%d did not persist", c.ID)
		}
		fmt.Printf("Event #%d dismissed. It stays in the event log but will not surface again.\n", c.ID)
		return nil

	case models.ChoiceManual:
		if err := machine.Manual(); err != nil {
			return err
		}
		fmt.Printf("Event #%d resolved as manual.\n", c.ID)
		fmt.Println("Adjust the day yourself with 'forge-drift watch' or reseed it with 'forge-drift schedule set --file day.json'.")
		return nil

	case models.ChoiceAI:
		return c.runAI(ctx, machine)
	}

	return fmt.Errorf("unknown choice %q", c.Choice)
}

func (c *ResolveCmd) runAI(ctx *Context, machine *resolution.Machine) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.RequestTimeout())
	defer cancel()

	fmt.Println("Requesting a revised schedule...")
	if err := machine.RequestAI(reqCtx); err != nil {
		if errors.Is(err, replan.ErrNoRemainingBlocks) {
			return fmt.Errorf("nothing left today to reschedule; resolve event #%d with --choice manual or --choice dismissed", c.ID)
		}
		return fmt.Errorf("reschedule request failed: %w", err)
	}

	event := machine.Event()
	fmt.Printf("\nRevised schedule from %s (event #%d, %q ran +%s over plan):\n\n",
		machine.Now(), event.ID, event.BlockTitle, utils.FormatDriftDuration(event.DriftMinutes()))
	for _, block := range machine.Suggestion() {
		line := fmt.Sprintf("  %s-%s  %-20s %s", block.StartTime, block.EndTime, block.Title, block.Type)
		if adj := block.Adjustment; adj != nil && adj.WasRescheduled {
			note := fmt.Sprintf("was %s", adj.OriginalStartTime)
			if adj.DurationChangeMinutes != 0 {
				note += fmt.Sprintf(", %+dm", adj.DurationChangeMinutes)
			}
			line += "  (" + note + ")"
		}
		fmt.Println(line)
	}
	fmt.Println()

	if !c.Yes {
		fmt.Print("Apply this schedule? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Printf("Cancelled. Event #%d remains unresolved.\n", c.ID)
			return nil
		}
	}

	if err := machine.Apply(); err != nil {
		return err
	}

	fmt.Printf("✓ Schedule for %s updated, event #%d resolved.\n", event.ScheduleDate, c.ID)
	return nil
}
