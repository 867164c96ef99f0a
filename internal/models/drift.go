package models

type ResolutionChoice string

const (
	ChoiceAI        ResolutionChoice = "ai"
	ChoiceManual    ResolutionChoice = "manual"
	ChoiceDismissed ResolutionChoice = "dismissed"
)

// DriftEvent records one detected divergence between planned and actual
// duration of a completed block. Created once by the completion path,
// resolved at most once, never deleted.
type DriftEvent struct {
	ID                     int64            `json:"id"`
	ScheduleDate           string           `json:"scheduleDate"` // YYYY-MM-DD format
	BlockTitle             string           `json:"blockTitle"`
	BlockStartTime         string           `json:"blockStartTime"` // HH:MM format
	PlannedDurationMinutes int              `json:"plannedDurationMinutes"`
	ActualDurationMinutes  int              `json:"actualDurationMinutes"`
	CumulativeDriftMinutes int              `json:"cumulativeDriftMinutes"`
	AffectedBlocksCount    int              `json:"affectedBlocksCount"`
	Resolved               bool             `json:"resolved"`
	UserChoice             ResolutionChoice `json:"userChoice,omitempty"`
	NewScheduleData        string           `json:"newScheduleData,omitempty"`
}

// DriftMinutes is the positive excess of actual over planned duration.
func (e DriftEvent) DriftMinutes() int {
	d := e.ActualDurationMinutes - e.PlannedDurationMinutes
	if d < 0 {
		return 0
	}
	return d
}

// ValidChoice reports whether c is one of the three recorded choices.
func ValidChoice(c ResolutionChoice) bool {
	switch c {
	case ChoiceAI, ChoiceManual, ChoiceDismissed:
		return true
	}
	return false
}
