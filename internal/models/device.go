package models

import "time"

// Device is a network endpoint identified by MAC address. A device is
// created on first contact and may be linked to exactly one student; the
// link is immutable once set.
type Device struct {
	ID        string    `db:"id" json:"id"`
	MAC       string    `db:"mac" json:"mac"`
	StudentID *string   `db:"student_id" json:"student_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Linked reports whether the device has been registered to a student.
func (d *Device) Linked() bool {
	return d.StudentID != nil && *d.StudentID != ""
}
