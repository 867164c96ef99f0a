// Package backup snapshots and restores the local database file. Snapshots
// go through SQLite's VACUUM INTO so they are consistent even while the
// database is open; restore swaps the file in atomically after taking a
// safety snapshot of whatever it replaces.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/logger"
	_ "modernc.org/sqlite"
)

const timestampLayout = "20060102-150405"

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	CreatedAt time.Time
	Size      int64
}

// Name returns the snapshot's filename without the directory.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// Manager snapshots one database file into a backups directory next to it.
type Manager struct {
	dbPath string
	dir    string
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
	}
}

// Dir returns the directory snapshots are written to.
func (m *Manager) Dir() string {
	return m.dir
}

// Create takes a snapshot of the database and rotates out the oldest
// snapshots beyond the retention limit. Rotation failures are logged, not
// returned; the snapshot itself already landed.
func (m *Manager) Create() (Info, error) {
	info, err := m.snapshot()
	if err != nil {
		return Info{}, err
	}

	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return info, nil
}

func (m *Manager) snapshot() (Info, error) {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	now := time.Now()
	path := m.snapshotPath(now, 0)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if counter > 100 {
			return Info{}, fmt.Errorf("failed to generate unique backup filename in %s", m.dir)
		}
		path = m.snapshotPath(now, counter)
	}

	if err := m.vacuumInto(path); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot was not written: %w", err)
	}
	return Info{Path: path, CreatedAt: now, Size: stat.Size()}, nil
}

func (m *Manager) snapshotPath(t time.Time, counter int) string {
	name := constants.BackupFilePrefix + t.Format(timestampLayout)
	if counter > 0 {
		name = fmt.Sprintf("%s-%d", name, counter)
	}
	return filepath.Join(m.dir, name+constants.BackupFileSuffix)
}

// vacuumInto writes a clean copy of the database to destPath. VACUUM INTO
// produces a consistent snapshot regardless of open connections; when the
// engine is too old for it, a plain file copy is the fallback.
func (m *Manager) vacuumInto(destPath string) error {
	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := src.Exec("VACUUM INTO ?", destPath); err != nil {
		return copyFile(m.dbPath, destPath)
	}
	return nil
}

// List returns the snapshots in the backup directory, newest first. A
// missing directory means no snapshots, not an error.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		stat, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: path, CreatedAt: createdAt, Size: stat.Size()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// parseSnapshotName extracts the timestamp from a snapshot filename,
// tolerating the collision counter Create appends.
func parseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) > len(timestampLayout) {
		stamp = stamp[:len(timestampLayout)]
	}
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the given snapshot. The current
// database, if any, is snapshotted first so a bad restore can be undone.
// The replacement itself goes through a temp file and rename so the
// database is never left half written.
func (m *Manager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := verifySnapshot(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.dbPath); err == nil {
		safety, err := m.snapshot()
		if err != nil {
			return fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		logger.Info("Saved pre-restore snapshot", "backup", safety.Name())
	}

	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.dbPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tempPath, "error", removeErr)
		}
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// verifySnapshot confirms the file opens as a SQLite database.
func verifySnapshot(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
