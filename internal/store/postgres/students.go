package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/edalquez/facegate/internal/store"
)

// StudentRepository provides PostgreSQL-backed student storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Upsert inserts a student or merges into an existing row keyed by the
// normalized name. Empty fields and missing embeddings never overwrite
// stored values, so re-registering a face keeps previously captured
// guardian details.
func (r *StudentRepository) Upsert(ctx context.Context, rec store.StudentRecord) error {
	var embedding any
	if len(rec.Embedding) > 0 {
		embedding = pgvector.NewVector(rec.Embedding)
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO students (name, display_name, year_level, guardian_name, guardian_email, image_ref, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), students.display_name),
			year_level = COALESCE(NULLIF(EXCLUDED.year_level, ''), students.year_level),
			guardian_name = COALESCE(NULLIF(EXCLUDED.guardian_name, ''), students.guardian_name),
			guardian_email = COALESCE(NULLIF(EXCLUDED.guardian_email, ''), students.guardian_email),
			image_ref = COALESCE(NULLIF(EXCLUDED.image_ref, ''), students.image_ref),
			embedding = COALESCE(EXCLUDED.embedding, students.embedding),
			updated_at = NOW()
	`, store.NormalizeName(rec.Name), rec.Name, rec.YearLevel, rec.GuardianName,
		rec.GuardianEmail, rec.ImageRef, embedding)
	if err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

const studentColumns = `display_name, COALESCE(year_level, ''), COALESCE(guardian_name, ''),
	COALESCE(guardian_email, ''), COALESCE(image_ref, ''), created_at, updated_at`

// Get returns a student by name, or nil when no such student exists.
func (r *StudentRepository) Get(ctx context.Context, name string) (*store.StudentRecord, error) {
	var rec store.StudentRecord
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE name = $1
	`, store.NormalizeName(name)).Scan(&rec.Name, &rec.YearLevel, &rec.GuardianName,
		&rec.GuardianEmail, &rec.ImageRef, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &rec, nil
}

// List returns all students ordered by name, without embeddings.
func (r *StudentRepository) List(ctx context.Context) ([]store.StudentRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []store.StudentRecord
	for rows.Next() {
		var rec store.StudentRecord
		if err := rows.Scan(&rec.Name, &rec.YearLevel, &rec.GuardianName,
			&rec.GuardianEmail, &rec.ImageRef, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListWithEmbeddings returns students that have a stored face embedding.
// Used to build the in-memory matching gallery.
func (r *StudentRepository) ListWithEmbeddings(ctx context.Context) ([]store.StudentRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT display_name, embedding
		FROM students
		WHERE embedding IS NOT NULL
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query student embeddings: %w", err)
	}
	defer rows.Close()

	var out []store.StudentRecord
	for rows.Next() {
		var rec store.StudentRecord
		var embedding pgvector.Vector
		if err := rows.Scan(&rec.Name, &embedding); err != nil {
			return nil, fmt.Errorf("scan student embedding: %w", err)
		}
		rec.Embedding = embedding.Slice()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteAllStudents removes every student. Used by the wipe command.
func (r *StudentRepository) DeleteAllStudents(ctx context.Context) (int64, error) {
	res, err := r.pool.db.ExecContext(ctx, `DELETE FROM students`)
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	return res.RowsAffected()
}
