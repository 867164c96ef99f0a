package models

type BlockType string

const (
	BlockTypeStudy    BlockType = "study"
	BlockTypeLecture  BlockType = "lecture"
	BlockTypeMission  BlockType = "mission"
	BlockTypeBreak    BlockType = "break"
	BlockTypeMeal     BlockType = "meal"
	BlockTypeFreeTime BlockType = "free_time"
)

// BlockAdjustment records how a re-plan changed a block relative to the
// schedule it replaced. Absent on blocks that were never touched.
type BlockAdjustment struct {
	WasRescheduled        bool   `json:"wasRescheduled"`
	OriginalStartTime     string `json:"originalStartTime,omitempty"` // HH:MM format
	DurationChangeMinutes int    `json:"durationChangeMinutes,omitempty"`
}

type TimeBlock struct {
	StartTime  string           `json:"startTime"` // HH:MM format
	EndTime    string           `json:"endTime"`   // HH:MM format
	Type       BlockType        `json:"type"`
	Title      string           `json:"title"`
	Priority   int              `json:"priority"`
	Adjustment *BlockAdjustment `json:"adjustment,omitempty"`
}
