package system

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Chabota512/forge-drift/internal/cli"
	"github.com/Chabota512/forge-drift/internal/tui"
)

type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	// Snapshot the database before a surface that can rewrite schedules
	ctx.PerformAutomaticBackup()

	requester, err := ctx.NewRequester(context.Background())
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.Tracker, requester), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
