package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "forge-drift"
	DefaultKeyringUser = "database-connection"
	GeminiKeyringUser  = "gemini-api-key"
	DefaultConfigPath  = "~/.config/forge-drift/forge-drift.db"
	ConfigFileName     = "config.toml"
	Version            = "v0.3.1"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "forge-drift-"
	BackupFileSuffix = ".db"

	// Sidecar backend constants
	BackendLockfileName  = "forge-backend.lock"
	BackendProcessName   = "forge-backend"
	BackendSecretHeader  = "X-Forge-Secret"
	BackendRequestHeader = "X-Request-ID"

	// Session States
	StateEvents SessionState = iota
	StateSchedule
	StateResolution
	StateEditor
	StateEditorForm
	StateConfirmation
)
