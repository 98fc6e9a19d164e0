package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkLog records hours a user spent on a task on a given date.
type WorkLog struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"` // Calendar date; time-of-day is not significant
	HoursWorked float64   `json:"hours_worked"`
	Description string    `json:"description,omitempty"`
	Task        TaskRef   `json:"task"`
	User        UserRef   `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}
