package system

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Chabota512/forge-drift/internal/backend"
	"github.com/Chabota512/forge-drift/internal/backup"
	"github.com/Chabota512/forge-drift/internal/cli"
	"github.com/Chabota512/forge-drift/internal/keyring"
	"github.com/Chabota512/forge-drift/internal/migration"
	"github.com/Chabota512/forge-drift/internal/storage"
	"github.com/Chabota512/forge-drift/internal/storage/postgres"
	"github.com/Chabota512/forge-drift/internal/storage/sqlite"
	"github.com/Chabota512/forge-drift/internal/utils"
	"github.com/Chabota512/forge-drift/internal/validation"
	"github.com/Chabota512/forge-drift/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: Config file present
	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		fmt.Printf("⚠ Config file: WARNING\n")
		fmt.Printf("   %s not found, defaults in use (run 'forge-drift init')\n", ctx.ConfigPath)
	} else {
		fmt.Printf("✓ Config file: OK\n")
	}

	// Check 2: Storage reachable
	if err := checkStorageReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		dbReachable = true
	}

	// Check 3: Schema version valid (only if DB is reachable)
	if dbReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (storage not reachable)\n")
	}

	// Check 4: Migrations complete (only if DB is reachable)
	if dbReachable {
		if err := checkMigrationsComplete(ctx); err != nil {
			fmt.Printf("❌ Migrations complete: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Migrations complete: OK\n")
		}
	} else {
		fmt.Printf("⊘ Migrations complete: SKIPPED (storage not reachable)\n")
	}

	// Check 5: Backups present (warning only, sqlite only)
	if _, ok := ctx.Store.(*sqlite.Store); ok {
		if err := checkBackupsPresent(ctx); err != nil {
			fmt.Printf("⚠ Backups present: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Backups present: OK\n")
		}
	} else {
		fmt.Printf("⊘ Backups present: SKIPPED (not file-backed storage)\n")
	}

	// Check 6: Today's schedule valid (only if DB is reachable)
	if dbReachable {
		if err := checkTodaySchedule(ctx); err != nil {
			fmt.Printf("❌ Schedule validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schedule validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schedule validation: SKIPPED (storage not reachable)\n")
	}

	// Check 7: Sidecar backend discoverable
	if endpoint, err := checkSidecar(ctx); err != nil {
		if provider := ctx.Config.AI.Provider; provider == "gemini" || provider == "local" {
			fmt.Printf("⊘ Sidecar backend: SKIPPED (AI provider is %s)\n", provider)
		} else {
			fmt.Printf("⚠ Sidecar backend: WARNING\n")
			fmt.Printf("   %v (AI rescheduling needs the desktop shell running)\n", err)
		}
	} else {
		fmt.Printf("✓ Sidecar backend: OK (listening on port %s)\n", endpoint.Port)
	}

	// Check 8: Keyring available (warning only)
	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   keyring unavailable, credentials fall back to environment variables\n")
	}

	// Check 9: Gemini key present (only when that provider is selected)
	if ctx.Config.AI.Provider == "gemini" {
		if _, err := keyring.GetGeminiKey(); err != nil {
			fmt.Printf("⚠ Gemini API key: WARNING\n")
			fmt.Printf("   no key in keyring or GEMINI_API_KEY, AI rescheduling will fail\n")
		} else {
			fmt.Printf("✓ Gemini API key: OK\n")
		}
	}

	// Check 10: Clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	// For SQL-backed stores, also try a simple query
	var db *sql.DB
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		db = s.GetDB()
	case *postgres.Store:
		db = s.GetDB()
	default:
		return nil
	}
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx)
	if err != nil || runner == nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", currentVersion, latestVersion)
	}

	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx)
	if err != nil || runner == nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion < latestVersion {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'forge-drift system migrate')", currentVersion, latestVersion)
	}

	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'forge-drift backups create'")
	}

	return nil
}

func checkTodaySchedule(ctx *cli.Context) error {
	day, err := ctx.Store.GetSchedule(utils.Today())
	if err != nil {
		if errors.Is(err, storage.ErrNoSchedule) {
			// An empty day is healthy, just nothing to validate
			return nil
		}
		return fmt.Errorf("failed to load today's schedule: %w", err)
	}

	result := validation.New().ValidateSchedule(day)
	if result.HasConflicts() {
		return fmt.Errorf("today's schedule has %d conflict(s): %s", len(result.Conflicts), result.Conflicts[0].Description)
	}

	return nil
}

func checkSidecar(ctx *cli.Context) (backend.Endpoint, error) {
	lockPath := ctx.Config.Backend.LockPath
	if lockPath == "" {
		var err error
		lockPath, err = backend.DefaultLockfilePath()
		if err != nil {
			return backend.Endpoint{}, err
		}
	}
	return backend.Discover(lockPath)
}

func checkClockTimezone() error {
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	return nil
}

// migrationRunner builds a runner over the embedded migrations for the
// store's dialect, or nil for stores whose schema lives elsewhere.
func migrationRunner(ctx *cli.Context) (*migration.Runner, error) {
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		subFS, err := fs.Sub(migrations.FS, "sqlite")
		if err != nil {
			return nil, err
		}
		return migration.NewRunner(s.GetDB(), subFS, "sqlite"), nil
	case *postgres.Store:
		subFS, err := fs.Sub(migrations.FS, "postgres")
		if err != nil {
			return nil, err
		}
		return migration.NewRunner(s.GetDB(), subFS, "postgres"), nil
	default:
		// Remote storage: the owning backend manages its own schema
		return nil, nil
	}
}
