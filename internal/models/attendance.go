package models

import "time"

// Attendance records that a student was present, via a device, during a
// meeting. Rows are written once and never mutated; (student_id, meeting_id)
// is unique.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	DeviceID  string    `db:"device_id" json:"device_id"`
	MeetingID string    `db:"meeting_id" json:"meeting_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceReportRow is the denormalised shape used by report exports.
type AttendanceReportRow struct {
	MeetingID        string     `db:"meeting_id"`
	MeetingStartedAt time.Time  `db:"meeting_started_at"`
	MeetingEndedAt   *time.Time `db:"meeting_ended_at"`
	StudentNumber    string     `db:"student_number"`
	StudentName      string     `db:"student_name"`
	DeviceMAC        string     `db:"device_mac"`
	RecordedAt       time.Time  `db:"recorded_at"`
}
