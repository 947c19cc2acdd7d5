package models

import "time"

// Meeting is one bounded class session. At most one meeting is in progress
// at a time, backed by a partial unique index on the meetings table.
type Meeting struct {
	ID         string     `db:"id" json:"id"`
	InProgress bool       `db:"in_progress" json:"in_progress"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}
