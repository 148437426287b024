package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bp-trend-server/internal/domain"
)

// SQLiteStore implements domain.ReadingStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite journal store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id TEXT PRIMARY KEY,
		taken_at DATETIME NOT NULL,
		systolic INTEGER NOT NULL,
		diastolic INTEGER NOT NULL,
		pulse INTEGER,
		body_position TEXT NOT NULL,
		exercise_context TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_readings_taken_at ON readings(taken_at);

	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		age INTEGER,
		weight_lbs REAL,
		gender TEXT,
		race_ethnicity TEXT,
		medical_conditions TEXT NOT NULL DEFAULT '[]',
		medications TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReading scans a row into a Reading struct.
func scanReading(s scanner) (*domain.Reading, error) {
	r := &domain.Reading{}
	var pulse sql.NullInt64
	var position, exerciseContext, symptomsJSON string

	err := s.Scan(
		&r.ID, &r.Timestamp, &r.Systolic, &r.Diastolic, &pulse,
		&position, &exerciseContext, &symptomsJSON,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pulse.Valid {
		v := int(pulse.Int64)
		r.Pulse = &v
	}
	r.BodyPosition = domain.BodyPosition(position)
	r.ExerciseContext = domain.ExerciseContext(exerciseContext)

	if err := json.Unmarshal([]byte(symptomsJSON), &r.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms: %w", err)
	}
	return r, nil
}

func encodeSymptoms(symptoms []domain.Symptom) (string, error) {
	if symptoms == nil {
		symptoms = []domain.Symptom{}
	}
	data, err := json.Marshal(symptoms)
	if err != nil {
		return "", fmt.Errorf("failed to encode symptoms: %w", err)
	}
	return string(data), nil
}

func encodeConditions(conditions []string) (string, error) {
	if conditions == nil {
		conditions = []string{}
	}
	data, err := json.Marshal(conditions)
	if err != nil {
		return "", fmt.Errorf("failed to encode medical conditions: %w", err)
	}
	return string(data), nil
}

func decodeConditions(conditionsJSON string, profile *domain.UserProfile) error {
	if err := json.Unmarshal([]byte(conditionsJSON), &profile.MedicalConditions); err != nil {
		return fmt.Errorf("failed to decode medical conditions: %w", err)
	}
	return nil
}

func nullPulse(pulse *int) sql.NullInt64 {
	if pulse == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*pulse), Valid: true}
}

const readingColumns = `id, taken_at, systolic, diastolic, pulse,
		body_position, exercise_context, symptoms, created_at, updated_at`

// ListReadings returns all readings ordered most recent first.
func (s *SQLiteStore) ListReadings(ctx context.Context) ([]*domain.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM readings
		ORDER BY taken_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var result []*domain.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetReading retrieves a reading by ID.
func (s *SQLiteStore) GetReading(ctx context.Context, id string) (*domain.Reading, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM readings
		WHERE id = ?
	`, id)

	r, err := scanReading(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return r, nil
}

// SaveReading inserts the reading or fully replaces an existing one with the
// same ID.
func (s *SQLiteStore) SaveReading(ctx context.Context, reading *domain.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}

	symptomsJSON, err := encodeSymptoms(reading.Symptoms)
	if err != nil {
		return err
	}

	now := time.Now()

	// Check if exists
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM readings WHERE id = ?", reading.ID,
	).Scan(&createdAt)

	if err == nil {
		// Update existing
		reading.CreatedAt = createdAt
		reading.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE readings SET
				taken_at = ?,
				systolic = ?,
				diastolic = ?,
				pulse = ?,
				body_position = ?,
				exercise_context = ?,
				symptoms = ?,
				updated_at = ?
			WHERE id = ?
		`,
			reading.Timestamp,
			reading.Systolic,
			reading.Diastolic,
			nullPulse(reading.Pulse),
			string(reading.BodyPosition),
			string(reading.ExerciseContext),
			symptomsJSON,
			now,
			reading.ID,
		)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	// Insert new
	reading.CreatedAt = now
	reading.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO readings (
			id, taken_at, systolic, diastolic, pulse,
			body_position, exercise_context, symptoms, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		reading.ID,
		reading.Timestamp,
		reading.Systolic,
		reading.Diastolic,
		nullPulse(reading.Pulse),
		string(reading.BodyPosition),
		string(reading.ExerciseContext),
		symptomsJSON,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// DeleteReading removes a reading by ID.
func (s *SQLiteStore) DeleteReading(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM readings WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetProfile returns the singleton profile, or nil when none was saved.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT age, weight_lbs, gender, race_ethnicity,
			medical_conditions, medications, updated_at
		FROM profile
		WHERE id = 1
	`)

	p := &domain.UserProfile{}
	var age sql.NullInt64
	var weight sql.NullFloat64
	var gender, race, medications sql.NullString
	var conditionsJSON string

	err := row.Scan(&age, &weight, &gender, &race, &conditionsJSON, &medications, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if weight.Valid {
		v := weight.Float64
		p.WeightLbs = &v
	}
	if gender.Valid {
		p.Gender = &gender.String
	}
	if race.Valid {
		p.RaceEthnicity = &race.String
	}
	if medications.Valid {
		p.Medications = &medications.String
	}
	if err := decodeConditions(conditionsJSON, p); err != nil {
		return nil, err
	}

	return p, nil
}

// SaveProfile creates or replaces the singleton profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	conditionsJSON, err := encodeConditions(profile.MedicalConditions)
	if err != nil {
		return err
	}

	now := time.Now()
	profile.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile (
			id, age, weight_lbs, gender, race_ethnicity,
			medical_conditions, medications, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			age = excluded.age,
			weight_lbs = excluded.weight_lbs,
			gender = excluded.gender,
			race_ethnicity = excluded.race_ethnicity,
			medical_conditions = excluded.medical_conditions,
			medications = excluded.medications,
			updated_at = excluded.updated_at
	`,
		profile.Age,
		profile.WeightLbs,
		profile.Gender,
		profile.RaceEthnicity,
		conditionsJSON,
		profile.Medications,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
