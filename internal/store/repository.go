package store

import (
	"context"
	"time"
)

// AttendanceStore persists attendance events.
//
// LogAttendance applies the duplicate-suppression policy atomically: if a
// record for the same (student, logType) already exists within the window,
// nothing is written and duplicate is true. Implementations must make the
// check-then-insert safe against concurrent captures of the same student.
type AttendanceStore interface {
	LogAttendance(ctx context.Context, rec AttendanceRecord, window time.Duration) (id int64, duplicate bool, err error)

	// MarkNotified flags a record once its guardian notification was handed off.
	MarkNotified(ctx context.Context, id int64) error

	// ListLogs returns the most recent records, newest first.
	ListLogs(ctx context.Context, limit int) ([]AttendanceRecord, error)

	// ListToday returns today's records, newest first.
	ListToday(ctx context.Context) ([]AttendanceRecord, error)

	Stats(ctx context.Context) (Stats, error)
}

// StudentStore persists registered students keyed by normalized name.
type StudentStore interface {
	// Upsert creates or partially updates a student: empty incoming fields
	// never overwrite existing values.
	Upsert(ctx context.Context, s StudentRecord) error

	// Get returns the student or nil if not registered.
	Get(ctx context.Context, name string) (*StudentRecord, error)

	// List returns all students ordered by name.
	List(ctx context.Context) ([]StudentRecord, error)

	// ListWithEmbeddings returns students that have a reference embedding,
	// used to build the match gallery.
	ListWithEmbeddings(ctx context.Context) ([]StudentRecord, error)
}

// Wiper removes stored data wholesale. Used by the wipe CLI command only.
type Wiper interface {
	DeleteAllLogs(ctx context.Context) (int64, error)
	DeleteAllStudents(ctx context.Context) (int64, error)
}
