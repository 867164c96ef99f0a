package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

// SaveSchedule replaces the full block list for a date in one transaction.
func (s *Store) SaveSchedule(date string, blocks []models.TimeBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO schedules (date, generated_at) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET generated_at = EXCLUDED.generated_at`,
		date, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM time_blocks WHERE schedule_date = $1", date)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO time_blocks (
			schedule_date, position, start_time, end_time, block_type, title, priority, was_rescheduled, original_start_time, duration_change_min
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, block := range blocks {
		wasRescheduled := false
		var originalStart sql.NullString
		var durationChange sql.NullInt64
		if block.Adjustment != nil {
			wasRescheduled = block.Adjustment.WasRescheduled
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
	var generatedAt time.Time
	err := s.db.QueryRow(
		"SELECT generated_at FROM schedules WHERE date = $1",
		date,
	).Scan(&generatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return models.DailySchedule{}, fmt.Errorf("%w: %s", storage.ErrNoSchedule, date)
		}
		return models.DailySchedule{}, err
	}

	schedule := models.DailySchedule{
		Date:        date,
		GeneratedAt: generatedAt,
	}

	rows, err := s.db.Query(`
		SELECT start_time, end_time, block_type, title, priority, was_rescheduled, original_start_time, duration_change_min
		FROM time_blocks WHERE schedule_date = $1 ORDER BY position`,
		date)
	if err != nil {
		return models.DailySchedule{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var block models.TimeBlock
		var blockType string
		var wasRescheduled bool
		var originalStart sql.NullString
		var durationChange sql.NullInt64
		err := rows.Scan(
			&block.StartTime, &block.EndTime, &blockType, &block.Title, &block.Priority, &wasRescheduled, &originalStart, &durationChange,
		)
		if err != nil {
			return models.DailySchedule{}, err
		}
		block.Type = models.BlockType(blockType)

		if wasRescheduled || originalStart.Valid || durationChange.Valid {
			block.Adjustment = &models.BlockAdjustment{
				WasRescheduled:    wasRescheduled,
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
