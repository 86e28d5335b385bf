package models

import "time"

const (
	ScheduleCurrent  = "current"
	ScheduleNext     = "next"
	ScheduleArchived = "archived"
)

type Schedule struct {
	ID          int          `json:"id"`
	Status      string       `json:"status"`
	Title       string       `json:"title"`
	CreatedAt   time.Time    `json:"created_at"`
	Assignments []Assignment `json:"assignments"`
}

type Assignment struct {
	ID         int       `json:"id"`
	ScheduleID int       `json:"schedule_id"`
	DanceDate  time.Time `json:"dance_date"`
	Duty       string    `json:"duty"`
	UserID     *int      `json:"user_id,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
}

type UpdateAssignmentRequest struct {
	Duty   *string `json:"duty,omitempty"`
	UserID *int    `json:"user_id,omitempty"`
}
