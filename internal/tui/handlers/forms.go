package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/utils"
)

// BlockFormModel holds the string-typed form state for one time block.
type BlockFormModel struct {
	Title     string
	StartTime string
	EndTime   string
	Type      models.BlockType
	Priority  string
}

// NewBlockFormModel seeds the form state from an existing block.
func NewBlockFormModel(block models.TimeBlock) *BlockFormModel {
	return &BlockFormModel{
		Title:     block.Title,
		StartTime: block.StartTime,
		EndTime:   block.EndTime,
		Type:      block.Type,
		Priority:  strconv.Itoa(block.Priority),
	}
}

// Block converts the completed form back into a time block. The base block
// supplies fields the form does not edit, such as adjustment history.
func (fm *BlockFormModel) Block(base models.TimeBlock) models.TimeBlock {
	base.Title = strings.TrimSpace(fm.Title)
	base.StartTime = fm.StartTime
	base.EndTime = fm.EndTime
	base.Type = fm.Type
	if prio, err := strconv.Atoi(fm.Priority); err == nil {
		base.Priority = prio
	}
	return base
}

// NewBlockForm creates the form for editing a single time block.
func NewBlockForm(fm *BlockFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Start (HH:MM)").
				Value(&fm.StartTime).
				Validate(func(s string) error {
					if !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("End (HH:MM)").
				Value(&fm.EndTime).
				Validate(func(s string) error {
					if !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewSelect[models.BlockType]().
				Title("Type").
				Options(
					huh.NewOption("Study", models.BlockTypeStudy),
					huh.NewOption("Lecture", models.BlockTypeLecture),
					huh.NewOption("Mission", models.BlockTypeMission),
					huh.NewOption("Break", models.BlockTypeBreak),
					huh.NewOption("Meal", models.BlockTypeMeal),
					huh.NewOption("Free time", models.BlockTypeFreeTime),
				).
				Value(&fm.Type),
			huh.NewInput().
				Title("Priority (1-5)").
				Value(&fm.Priority).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i < 1 || i > 5 {
						return fmt.Errorf("priority must be 1-5")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
