package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/bp-trend-server/internal/domain"
)

// PostgresStore implements domain.ReadingStore using PostgreSQL via lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL journal store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL journal store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// ListReadings returns all readings ordered most recent first.
func (s *PostgresStore) ListReadings(ctx context.Context) ([]*domain.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM readings
		ORDER BY taken_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
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
func (s *PostgresStore) GetReading(ctx context.Context, id string) (*domain.Reading, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM readings
		WHERE id = $1
	`, id)

	r, err := scanReading(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return r, nil
}

// SaveReading inserts the reading or fully replaces an existing one with the
// same ID, via upsert.
func (s *PostgresStore) SaveReading(ctx context.Context, reading *domain.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}

	symptomsJSON, err := encodeSymptoms(reading.Symptoms)
	if err != nil {
		return err
	}

	now := time.Now()

	query := `
		INSERT INTO readings (
			id, taken_at, systolic, diastolic, pulse,
			body_position, exercise_context, symptoms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			taken_at = EXCLUDED.taken_at,
			systolic = EXCLUDED.systolic,
			diastolic = EXCLUDED.diastolic,
			pulse = EXCLUDED.pulse,
			body_position = EXCLUDED.body_position,
			exercise_context = EXCLUDED.exercise_context,
			symptoms = EXCLUDED.symptoms,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query,
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
	).Scan(&reading.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save reading: %w", err)
	}

	reading.UpdatedAt = now
	return nil
}

// DeleteReading removes a reading by ID.
func (s *PostgresStore) DeleteReading(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM readings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetProfile returns the singleton profile, or nil when none was saved.
func (s *PostgresStore) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
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
		return nil, fmt.Errorf("failed to get profile: %w", err)
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
func (s *PostgresStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	conditionsJSON, err := encodeConditions(profile.MedicalConditions)
	if err != nil {
		return err
	}

	now := time.Now()
	profile.UpdatedAt = now

	query := `
		INSERT INTO profile (
			id, age, weight_lbs, gender, race_ethnicity,
			medical_conditions, medications, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			age = EXCLUDED.age,
			weight_lbs = EXCLUDED.weight_lbs,
			gender = EXCLUDED.gender,
			race_ethnicity = EXCLUDED.race_ethnicity,
			medical_conditions = EXCLUDED.medical_conditions,
			medications = EXCLUDED.medications,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
