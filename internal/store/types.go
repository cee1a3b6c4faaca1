// Package store defines the attendance and student records and the
// repository contracts the workflow runs against.
package store

import (
	"time"
)

// LogType distinguishes a Time In from a Time Out event.
type LogType string

const (
	LogIn  LogType = "IN"
	LogOut LogType = "OUT"
)

// AttendanceRecord is one accepted attendance event.
type AttendanceRecord struct {
	ID          int64     `json:"id"`
	StudentName string    `json:"student_name"`
	LogType     LogType   `json:"log_type"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  *float64  `json:"confidence,omitempty"`
	ImageRef    string    `json:"image_path,omitempty"`
	Notified    bool      `json:"notified"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentRecord is a registered student. Name is the natural key.
type StudentRecord struct {
	Name          string    `json:"name"`
	YearLevel     string    `json:"year_level,omitempty"`
	GuardianName  string    `json:"guardian_name,omitempty"`
	GuardianEmail string    `json:"guardian_email,omitempty"`
	ImageRef      string    `json:"image_ref,omitempty"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stats aggregates attendance counters for the dashboard.
type Stats struct {
	TotalLogs           int `json:"total_logs"`
	UniqueStudents      int `json:"unique_students"`
	TodayLogs           int `json:"today_logs"`
	TodayUniqueStudents int `json:"today_unique_students"`
}
