package models

import "time"

// Score is a graded mark assigned to a student, optionally tied to a
// meeting.
type Score struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	MeetingID *string   `db:"meeting_id" json:"meeting_id,omitempty"`
	Score     float64   `db:"score" json:"score"`
	FullScore float64   `db:"full_score" json:"full_score"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
