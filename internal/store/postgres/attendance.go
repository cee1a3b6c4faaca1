package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edalquez/facegate/internal/store"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// LogAttendance inserts a record unless one with the same (student, logType)
// exists within the window. Check and insert run in a single serializable
// transaction so two near-simultaneous captures of the same student cannot
// both pass the duplicate check.
func (r *AttendanceRepository) LogAttendance(ctx context.Context, rec store.AttendanceRecord, window time.Duration) (int64, bool, error) {
	tx, err := r.pool.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff := rec.Timestamp.Add(-window)

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_logs
			WHERE student_name = $1 AND log_type = $2 AND ts > $3
		)
	`, rec.StudentName, rec.LogType, cutoff).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return 0, true, nil
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_logs (student_name, log_type, ts, confidence, image_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.StudentName, rec.LogType, rec.Timestamp, rec.Confidence, nullIfEmpty(rec.ImageRef)).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("insert attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit attendance: %w", err)
	}
	return id, false, nil
}

// MarkNotified flags a record once its guardian notification was handed off.
func (r *AttendanceRepository) MarkNotified(ctx context.Context, id int64) error {
	_, err := r.pool.db.ExecContext(ctx,
		`UPDATE attendance_logs SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

const attendanceColumns = `id, student_name, log_type, ts, confidence, COALESCE(image_ref, ''), notified, created_at`

// ListLogs returns the most recent records, newest first.
func (r *AttendanceRepository) ListLogs(ctx context.Context, limit int) ([]store.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_logs
		ORDER BY ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListToday returns today's records, newest first.
func (r *AttendanceRepository) ListToday(ctx context.Context) ([]store.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_logs
		WHERE ts::date = CURRENT_DATE
		ORDER BY ts DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query today logs: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Stats aggregates the attendance counters in a single query.
func (r *AttendanceRepository) Stats(ctx context.Context) (store.Stats, error) {
	var s store.Stats
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT student_name),
			COUNT(*) FILTER (WHERE ts::date = CURRENT_DATE),
			COUNT(DISTINCT student_name) FILTER (WHERE ts::date = CURRENT_DATE)
		FROM attendance_logs
	`).Scan(&s.TotalLogs, &s.UniqueStudents, &s.TodayLogs, &s.TodayUniqueStudents)
	if err != nil {
		return store.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

// DeleteAllLogs removes every attendance record. Used by the wipe command.
func (r *AttendanceRepository) DeleteAllLogs(ctx context.Context) (int64, error) {
	res, err := r.pool.db.ExecContext(ctx, `DELETE FROM attendance_logs`)
	if err != nil {
		return 0, fmt.Errorf("delete logs: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]store.AttendanceRecord, error) {
	var out []store.AttendanceRecord
	for rows.Next() {
		var rec store.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentName, &rec.LogType, &rec.Timestamp,
			&rec.Confidence, &rec.ImageRef, &rec.Notified, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
