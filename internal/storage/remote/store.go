// Package remote implements the storage provider against a running
// forge-backend sidecar instead of a local database. Every request carries
// the shared secret from the lockfile plus a request id, and is sent exactly
// once; the client never retries on its own.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/Chabota512/forge-drift/internal/backend"
	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

type Store struct {
	lockPath string
	endpoint backend.Endpoint
	client   *http.Client
}

// NewStore creates a store that talks to the sidecar found through the
// lockfile at lockPath. An empty lockPath means the default location under
// the user config directory.
func NewStore(lockPath string) *Store {
	return &Store{
		lockPath: lockPath,
		client:   &http.Client{Timeout: constants.RequestTimeout},
	}
}

// Init verifies the sidecar is reachable. The backend owns its schema, so
// there is nothing to create on this side.
func (s *Store) Init() error {
	return s.Load()
}

func (s *Store) Load() error {
	lockPath := s.lockPath
	if lockPath == "" {
		var err error
		lockPath, err = backend.DefaultLockfilePath()
		if err != nil {
			return err
		}
	}

	endpoint, err := backend.Discover(lockPath)
	if err != nil {
		return err
	}
	s.endpoint = endpoint

	if err := s.do(http.MethodGet, "/api/health", nil, nil, nil); err != nil {
		return fmt.Errorf("forge-backend is not responding: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetSchedule(date string) (models.DailySchedule, error) {
	var schedule models.DailySchedule
	err := s.do(http.MethodGet, "/api/schedules/"+url.PathEscape(date), nil, &schedule, fmt.Errorf("%w: %s", storage.ErrNoSchedule, date))
	if err != nil {
		return models.DailySchedule{}, err
	}
	return schedule, nil
}

func (s *Store) SaveSchedule(date string, blocks []models.TimeBlock) error {
	payload := struct {
		Date       string             `json:"date"`
		TimeBlocks []models.TimeBlock `json:"timeBlocks"`
	}{Date: date, TimeBlocks: blocks}
	return s.do(http.MethodPut, "/api/schedules/"+url.PathEscape(date), payload, nil, nil)
}

func (s *Store) ListDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.listEvents("/api/drift-events?date=" + url.QueryEscape(date))
}

func (s *Store) ListUnresolvedDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.listEvents("/api/drift-events/unresolved?date=" + url.QueryEscape(date))
}

func (s *Store) listEvents(path string) ([]models.DriftEvent, error) {
	var envelope struct {
		DriftEvents []models.DriftEvent `json:"driftEvents"`
	}
	if err := s.do(http.MethodGet, path, nil, &envelope, nil); err != nil {
		return nil, err
	}
	return envelope.DriftEvents, nil
}

func (s *Store) GetDriftEvent(id int64) (models.DriftEvent, error) {
	var event models.DriftEvent
	err := s.do(http.MethodGet, "/api/drift-events/"+strconv.FormatInt(id, 10), nil, &event, fmt.Errorf("%w: %d", storage.ErrEventNotFound, id))
	if err != nil {
		return models.DriftEvent{}, err
	}
	return event, nil
}

func (s *Store) CreateDriftEvent(event models.DriftEvent) (models.DriftEvent, error) {
	var created models.DriftEvent
	if err := s.do(http.MethodPost, "/api/drift-events", event, &created, nil); err != nil {
		return models.DriftEvent{}, err
	}
	return created, nil
}

func (s *Store) ResolveDriftEvent(id int64, choice models.ResolutionChoice, newScheduleData string) error {
	if !models.ValidChoice(choice) {
		return fmt.Errorf("invalid resolution choice: %s", choice)
	}
	payload := struct {
		UserChoice      models.ResolutionChoice `json:"userChoice"`
		NewScheduleData string                  `json:"newScheduleData,omitempty"`
	}{UserChoice: choice, NewScheduleData: newScheduleData}
	return s.do(http.MethodPost, "/api/drift-events/"+strconv.FormatInt(id, 10)+"/resolve", payload, nil, fmt.Errorf("%w: %d", storage.ErrEventNotFound, id))
}

func (s *Store) GetConfigPath() string {
	return s.lockPath
}

// do sends one request to the sidecar. A 404 maps to notFound when the
// caller provides one, a 409 always maps to ErrEventResolved.
func (s *Store) do(method, path string, body any, out any, notFound error) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, s.endpoint.BaseURL()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.BackendSecretHeader, s.endpoint.Secret)
	req.Header.Set(constants.BackendRequestHeader, uuid.NewString())

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated:
	case res.StatusCode == http.StatusNotFound && notFound != nil:
		return notFound
	case res.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s %s", storage.ErrEventResolved, method, path)
	default:
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("backend returned status %d: %s", res.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}
