// Package mock provides in-memory implementations of the store interfaces
// for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/edalquez/facegate/internal/store"
)

// AttendanceStore is an in-memory store.AttendanceStore.
type AttendanceStore struct {
	mu      sync.Mutex
	records []store.AttendanceRecord
	nextID  int64

	// Error injection
	LogError   error
	MarkError  error
	ListError  error
	StatsError error
}

// NewAttendanceStore creates an empty mock attendance store.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{nextID: 1}
}

// LogAttendance applies the duplicate window against the in-memory records.
func (m *AttendanceStore) LogAttendance(ctx context.Context, rec store.AttendanceRecord, window time.Duration) (int64, bool, error) {
	if m.LogError != nil {
		return 0, false, m.LogError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := store.NormalizeName(rec.StudentName)
	for i := range m.records {
		prev := &m.records[i]
		if store.NormalizeName(prev.StudentName) != key || prev.LogType != rec.LogType {
			continue
		}
		if rec.Timestamp.Sub(prev.Timestamp) < window {
			return 0, true, nil
		}
	}

	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = rec.Timestamp
	m.records = append(m.records, rec)
	return rec.ID, false, nil
}

// MarkNotified flags a record as notified.
func (m *AttendanceStore) MarkNotified(ctx context.Context, id int64) error {
	if m.MarkError != nil {
		return m.MarkError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Notified = true
			return nil
		}
	}
	return nil
}

// ListLogs returns records newest first.
func (m *AttendanceStore) ListLogs(ctx context.Context, limit int) ([]store.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]store.AttendanceRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListToday returns records from the current calendar day, newest first.
func (m *AttendanceStore) ListToday(ctx context.Context) ([]store.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	y, mo, d := now.Date()
	var out []store.AttendanceRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		ry, rm, rd := m.records[i].Timestamp.Date()
		if ry == y && rm == mo && rd == d {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// Stats computes the aggregate counters over the in-memory records.
func (m *AttendanceStore) Stats(ctx context.Context) (store.Stats, error) {
	if m.StatsError != nil {
		return store.Stats{}, m.StatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	y, mo, d := now.Date()
	unique := map[string]bool{}
	todayUnique := map[string]bool{}
	var stats store.Stats

	for i := range m.records {
		rec := &m.records[i]
		stats.TotalLogs++
		unique[store.NormalizeName(rec.StudentName)] = true
		ry, rm, rd := rec.Timestamp.Date()
		if ry == y && rm == mo && rd == d {
			stats.TodayLogs++
			todayUnique[store.NormalizeName(rec.StudentName)] = true
		}
	}
	stats.UniqueStudents = len(unique)
	stats.TodayUniqueStudents = len(todayUnique)
	return stats, nil
}

// Records returns a copy of all stored records for assertions.
func (m *AttendanceStore) Records() []store.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.AttendanceRecord, len(m.records))
	copy(out, m.records)
	return out
}

// StudentStore is an in-memory store.StudentStore.
type StudentStore struct {
	mu       sync.Mutex
	students map[string]store.StudentRecord

	// Error injection
	UpsertError error
	GetError    error
	ListError   error
}

// NewStudentStore creates an empty mock student store.
func NewStudentStore() *StudentStore {
	return &StudentStore{students: make(map[string]store.StudentRecord)}
}

// Upsert creates or partially updates a student. Empty incoming fields never
// overwrite existing values.
func (m *StudentStore) Upsert(ctx context.Context, s store.StudentRecord) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := store.NormalizeName(s.Name)
	existing, ok := m.students[key]
	if !ok {
		s.CreatedAt = time.Now()
		s.UpdatedAt = s.CreatedAt
		m.students[key] = s
		return nil
	}

	if s.YearLevel != "" {
		existing.YearLevel = s.YearLevel
	}
	if s.GuardianName != "" {
		existing.GuardianName = s.GuardianName
	}
	if s.GuardianEmail != "" {
		existing.GuardianEmail = s.GuardianEmail
	}
	if s.ImageRef != "" {
		existing.ImageRef = s.ImageRef
	}
	if len(s.Embedding) > 0 {
		existing.Embedding = s.Embedding
	}
	existing.UpdatedAt = time.Now()
	m.students[key] = existing
	return nil
}

// Get returns the student or nil when not registered.
func (m *StudentStore) Get(ctx context.Context, name string) (*store.StudentRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[store.NormalizeName(name)]
	if !ok {
		return nil, nil
	}
	snapshot := s
	return &snapshot, nil
}

// List returns all students.
func (m *StudentStore) List(ctx context.Context) ([]store.StudentRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]store.StudentRecord, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

// ListWithEmbeddings returns students that carry a reference embedding.
func (m *StudentStore) ListWithEmbeddings(ctx context.Context) ([]store.StudentRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []store.StudentRecord
	for _, s := range m.students {
		if len(s.Embedding) > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}
