package cli

import (
	"context"
	"fmt"

	"github.com/Chabota512/forge-drift/internal/backend"
	"github.com/Chabota512/forge-drift/internal/backup"
	"github.com/Chabota512/forge-drift/internal/config"
	"github.com/Chabota512/forge-drift/internal/drift"
	"github.com/Chabota512/forge-drift/internal/keyring"
	"github.com/Chabota512/forge-drift/internal/logger"
	"github.com/Chabota512/forge-drift/internal/replan"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/storage/sqlite"
	"github.com/Chabota512/forge-drift/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Tracker *drift.Tracker
	Config  *config.Config

	// ConfigPath is where the TOML config was loaded from (or would be
	// written by init).
	ConfigPath string
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	// Only file-backed stores can be snapshotted locally
	store, ok := c.Store.(*sqlite.Store)
	if !ok {
		return
	}
	mgr := backup.NewManager(store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// NewRequester builds the configured re-planner backend. The sidecar
// requester resolves the forge-backend lockfile lazily on each request,
// so it never fails here; the Gemini requester needs a key up front; the
// local requester replans offline with no setup at all.
func (c *Context) NewRequester(ctx context.Context) (replan.Requester, error) {
	switch c.Config.AI.Provider {
	case "", "sidecar":
		lockPath := c.Config.Backend.LockPath
		if lockPath == "" {
			var err error
			lockPath, err = backend.DefaultLockfilePath()
			if err != nil {
				return nil, err
			}
		}
		return replan.NewSidecarRequester(lockPath), nil
	case "gemini":
		key, err := keyring.GetGeminiKey()
		if err != nil {
			return nil, fmt.Errorf("no Gemini API key available: store one with 'forge-drift system keyring set gemini <key>' or set GEMINI_API_KEY: %w", err)
		}
		return replan.NewGeminiRequester(ctx, key, c.Config.AI.Model)
	case "local":
		return replan.NewLocalRequester(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (expected \"sidecar\", \"gemini\", or \"local\")", c.Config.AI.Provider)
	}
}

// ResolveDate turns a --date flag value into a YYYY-MM-DD string, with
// "today" as the usual shorthand.
func ResolveDate(s string) (string, error) {
	if s == "" || s == "today" {
		return utils.Today(), nil
	}
	if !utils.ValidateDateFormat(s) {
		return "", fmt.Errorf("invalid date format %q, use YYYY-MM-DD or 'today'", s)
	}
	return s, nil
}
