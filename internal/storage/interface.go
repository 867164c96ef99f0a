package storage

import (
	"errors"

	"github.com/Chabota512/forge-drift/internal/models"
)

// Sentinel errors shared by every backend. Callers branch on these with
// errors.Is rather than matching message text.
var (
	// ErrNoSchedule indicates no schedule row exists for the requested date.
	ErrNoSchedule = errors.New("no schedule found for date")
	// ErrEventNotFound indicates the drift event id does not exist.
	ErrEventNotFound = errors.New("drift event not found")
	// ErrEventResolved indicates the drift event was already resolved.
	// Resolution is a one-way transition, so a second resolve attempt
	// must fail with this error instead of overwriting the first choice.
	ErrEventResolved = errors.New("drift event already resolved")
)

// Provider defines the interface for drift storage backends
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Schedules
	GetSchedule(date string) (models.DailySchedule, error)
	SaveSchedule(date string, blocks []models.TimeBlock) error

	// Drift events
	ListDriftEvents(date string) ([]models.DriftEvent, error)
	ListUnresolvedDriftEvents(date string) ([]models.DriftEvent, error)
	GetDriftEvent(id int64) (models.DriftEvent, error)
	CreateDriftEvent(event models.DriftEvent) (models.DriftEvent, error)
	ResolveDriftEvent(id int64, choice models.ResolutionChoice, newScheduleData string) error

	// Utils
	GetConfigPath() string
}
