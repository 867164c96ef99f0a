package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

const driftEventColumns = "id, schedule_date, block_title, block_start_time, planned_duration_min, actual_duration_min, cumulative_drift_min, affected_blocks_count, resolved, user_choice, new_schedule_data"

func (s *Store) CreateDriftEvent(event models.DriftEvent) (models.DriftEvent, error) {
	// lib/pq has no LastInsertId, so read the serial back with RETURNING
	err := s.db.QueryRow(`
		INSERT INTO drift_events (
			schedule_date, block_title, block_start_time, planned_duration_min, actual_duration_min, cumulative_drift_min, affected_blocks_count, resolved, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		RETURNING id`,
		event.ScheduleDate, event.BlockTitle, event.BlockStartTime, event.PlannedDurationMinutes, event.ActualDurationMinutes, event.CumulativeDriftMinutes, event.AffectedBlocksCount, time.Now().UTC(),
	).Scan(&event.ID)
	if err != nil {
		return models.DriftEvent{}, fmt.Errorf("failed to create drift event: %w", err)
	}

	event.Resolved = false
	event.UserChoice = ""
	event.NewScheduleData = ""
	return event, nil
}

func (s *Store) GetDriftEvent(id int64) (models.DriftEvent, error) {
	row := s.db.QueryRow("SELECT "+driftEventColumns+" FROM drift_events WHERE id = $1", id)
	event, err := scanDriftEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.DriftEvent{}, fmt.Errorf("%w: %d", storage.ErrEventNotFound, id)
		}
		return models.DriftEvent{}, err
	}
	return event, nil
}

func (s *Store) ListDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.listEvents("SELECT "+driftEventColumns+" FROM drift_events WHERE schedule_date = $1 ORDER BY id", date)
}

func (s *Store) ListUnresolvedDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.listEvents("SELECT "+driftEventColumns+" FROM drift_events WHERE schedule_date = $1 AND resolved = FALSE ORDER BY id", date)
}

func (s *Store) listEvents(query string, date string) ([]models.DriftEvent, error) {
	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.DriftEvent
	for rows.Next() {
		event, err := scanDriftEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ResolveDriftEvent marks an event resolved with the user's choice. The
// resolved = FALSE guard keeps the transition single-shot under concurrent
// writers without an explicit lock.
func (s *Store) ResolveDriftEvent(id int64, choice models.ResolutionChoice, newScheduleData string) error {
	if !models.ValidChoice(choice) {
		return fmt.Errorf("invalid resolution choice: %s", choice)
	}

	var data sql.NullString
	if newScheduleData != "" {
		data = sql.NullString{String: newScheduleData, Valid: true}
	}

	result, err := s.db.Exec(
		"UPDATE drift_events SET resolved = TRUE, user_choice = $1, new_schedule_data = $2, resolved_at = $3 WHERE id = $4 AND resolved = FALSE",
		string(choice), data, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve drift event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var resolved bool
		err := s.db.QueryRow("SELECT resolved FROM drift_events WHERE id = $1", id).Scan(&resolved)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %d", storage.ErrEventNotFound, id)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %d", storage.ErrEventResolved, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriftEvent(row rowScanner) (models.DriftEvent, error) {
	var event models.DriftEvent
	var userChoice, newScheduleData sql.NullString
	err := row.Scan(
		&event.ID, &event.ScheduleDate, &event.BlockTitle, &event.BlockStartTime, &event.PlannedDurationMinutes, &event.ActualDurationMinutes, &event.CumulativeDriftMinutes, &event.AffectedBlocksCount, &event.Resolved, &userChoice, &newScheduleData,
	)
	if err != nil {
		return models.DriftEvent{}, err
	}
	if userChoice.Valid {
		event.UserChoice = models.ResolutionChoice(userChoice.String)
	}
	if newScheduleData.Valid {
		event.NewScheduleData = newScheduleData.String
	}
	return event, nil
}
