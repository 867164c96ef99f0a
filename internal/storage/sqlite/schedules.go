package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

// SaveSchedule replaces the full block list for a date in one transaction.
// Blocks are stored in slice order; position is the only ordering the store
// knows about, so callers are responsible for handing over a coherent day.
func (s *Store) SaveSchedule(date string, blocks []models.TimeBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO schedules (date, generated_at) VALUES (?, ?)",
		date, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	// Replacing the schedule row cascades to its blocks, but delete explicitly
	// so the replace semantics don't depend on the FK pragma being on
	_, err = tx.Exec("DELETE FROM time_blocks WHERE schedule_date = ?", date)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO time_blocks (
			schedule_date, position, start_time, end_time, block_type, title, priority, was_rescheduled, original_start_time, duration_change_min
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, block := range blocks {
		wasRescheduled := 0
		var originalStart sql.NullString
		var durationChange sql.NullInt64
		if block.Adjustment != nil {
			if block.Adjustment.WasRescheduled {
				wasRescheduled = 1
			}
			if block.Adjustment.OriginalStartTime != "" {
				originalStart = sql.NullString{String: block.Adjustment.OriginalStartTime, Valid: true}
			}
			durationChange = sql.NullInt64{Int64: int64(block.Adjustment.DurationChangeMinutes), Valid: true}
		}
		_, err = stmt.Exec(
			date, i, block.StartTime, block.EndTime, string(block.Type), block.Title, block.Priority, wasRescheduled, originalStart, durationChange,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) GetSchedule(date string) (models.DailySchedule, error) {
	var generatedAt string
	err := s.db.QueryRow(
		"SELECT generated_at FROM schedules WHERE date = ?",
		date,
	).Scan(&generatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return models.DailySchedule{}, fmt.Errorf("%w: %s", storage.ErrNoSchedule, date)
		}
		return models.DailySchedule{}, err
	}

	schedule := models.DailySchedule{
		Date: date,
	}
	if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		schedule.GeneratedAt = ts
	}

	rows, err := s.db.Query(`
		SELECT start_time, end_time, block_type, title, priority, was_rescheduled, original_start_time, duration_change_min
		FROM time_blocks WHERE schedule_date = ? ORDER BY position`,
		date)
	if err != nil {
		return models.DailySchedule{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var block models.TimeBlock
		var blockType string
		var wasRescheduled int
		var originalStart sql.NullString
		var durationChange sql.NullInt64
		err := rows.Scan(
			&block.StartTime, &block.EndTime, &blockType, &block.Title, &block.Priority, &wasRescheduled, &originalStart, &durationChange,
		)
		if err != nil {
			return models.DailySchedule{}, err
		}
		block.Type = models.BlockType(blockType)

		if wasRescheduled == 1 || originalStart.Valid || durationChange.Valid {
			block.Adjustment = &models.BlockAdjustment{
				WasRescheduled:    wasRescheduled == 1,
				OriginalStartTime: originalStart.String,
			}
			if durationChange.Valid {
				block.Adjustment.DurationChangeMinutes = int(durationChange.Int64)
			}
		}
		schedule.Blocks = append(schedule.Blocks, block)
	}
	if err := rows.Err(); err != nil {
		return models.DailySchedule{}, err
	}

	return schedule, nil
}
