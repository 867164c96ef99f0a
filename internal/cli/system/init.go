package system

import (
	"fmt"
	"os"

	"github.com/Chabota512/forge-drift/internal/cli"
	"github.com/Chabota512/forge-drift/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// Write the default config on first run so the user has something to edit
	if _, err := os.Stat(ctx.ConfigPath); os.IsNotExist(err) {
		if err := config.Save(ctx.Config, ctx.ConfigPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote default config to: %s\n", ctx.ConfigPath)
	}

	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Database exists, close it first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized forge-drift storage at: %s\n", ctx.Store.GetConfigPath())

	return nil
}
