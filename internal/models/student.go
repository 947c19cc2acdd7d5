package models

import "time"

// Student is a course member identified by an external student number.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
