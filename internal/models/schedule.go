package models

import "time"

// DailySchedule is one day's ordered block sequence. The engine reads
// snapshots of it and writes full replacements; blocks are never mutated
// in place.
type DailySchedule struct {
	Date        string      `json:"date"` // YYYY-MM-DD format
	Blocks      []TimeBlock `json:"blocks"`
	GeneratedAt time.Time   `json:"generatedAt"`
}
