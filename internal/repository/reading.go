// Package repository implements the reading store against the pgx
// connection pool used by the full server deployment.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/domain"
)

// ReadingRepository handles reading and profile persistence over pgx.
type ReadingRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:  db,
		log: logger,
	}
}

const readingColumns = `id, taken_at, systolic, diastolic, pulse,
	   body_position, exercise_context, symptoms, created_at, updated_at`

// ListReadings returns all readings ordered most recent first.
func (r *ReadingRepository) ListReadings(ctx context.Context) ([]*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		ORDER BY taken_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.WithError(err).Error("Failed to list readings")
		return nil, fmt.Errorf("listing readings: %w", err)
	}
	defer rows.Close()

	var result []*domain.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reading row: %w", err)
		}
		result = append(result, reading)
	}
	return result, rows.Err()
}

// GetReading retrieves a reading by its ID.
func (r *ReadingRepository) GetReading(ctx context.Context, id string) (*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		WHERE id = $1`

	reading, err := scanReading(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"reading_id": id,
			"error":      err,
		}).Error("Failed to get reading by ID")
		return nil, fmt.Errorf("getting reading by ID: %w", err)
	}

	return reading, nil
}

// SaveReading inserts the reading or fully replaces an existing one with the
// same ID (edit semantics).
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}

	symptoms := reading.Symptoms
	if symptoms == nil {
		symptoms = []domain.Symptom{}
	}
	symptomsJSON, err := json.Marshal(symptoms)
	if err != nil {
		return fmt.Errorf("encoding symptoms: %w", err)
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
		RETURNING created_at`

	err = r.db.QueryRow(ctx, query,
		reading.ID,
		reading.Timestamp,
		reading.Systolic,
		reading.Diastolic,
		reading.Pulse,
		string(reading.BodyPosition),
		string(reading.ExerciseContext),
		string(symptomsJSON),
		now,
		now,
	).Scan(&reading.CreatedAt)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"reading_id": reading.ID,
			"error":      err,
		}).Error("Failed to save reading")
		return fmt.Errorf("saving reading: %w", err)
	}

	reading.UpdatedAt = now

	r.log.WithFields(logrus.Fields{
		"reading_id": reading.ID,
		"systolic":   reading.Systolic,
		"diastolic":  reading.Diastolic,
	}).Info("Reading saved successfully")

	return nil
}

// DeleteReading removes a reading by ID.
func (r *ReadingRepository) DeleteReading(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM readings WHERE id = $1", id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"reading_id": id,
			"error":      err,
		}).Error("Failed to delete reading")
		return fmt.Errorf("deleting reading: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetProfile returns the singleton profile, or nil when none was saved.
func (r *ReadingRepository) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	query := `
		SELECT age, weight_lbs, gender, race_ethnicity,
			   medical_conditions, medications, updated_at
		FROM profile
		WHERE id = 1`

	profile := &domain.UserProfile{}
	var conditionsJSON string

	err := r.db.QueryRow(ctx, query).Scan(
		&profile.Age,
		&profile.WeightLbs,
		&profile.Gender,
		&profile.RaceEthnicity,
		&conditionsJSON,
		&profile.Medications,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.WithError(err).Error("Failed to get profile")
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	if err := json.Unmarshal([]byte(conditionsJSON), &profile.MedicalConditions); err != nil {
		return nil, fmt.Errorf("decoding medical conditions: %w", err)
	}

	return profile, nil
}

// SaveProfile creates or replaces the singleton profile.
func (r *ReadingRepository) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	conditions := profile.MedicalConditions
	if conditions == nil {
		conditions = []string{}
	}
	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return fmt.Errorf("encoding medical conditions: %w", err)
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
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query,
		profile.Age,
		profile.WeightLbs,
		profile.Gender,
		profile.RaceEthnicity,
		string(conditionsJSON),
		profile.Medications,
		now,
	)
	if err != nil {
		r.log.WithError(err).Error("Failed to save profile")
		return fmt.Errorf("saving profile: %w", err)
	}

	r.log.Info("Profile saved successfully")
	return nil
}

// Close is a no-op; the pool is owned and closed by the database package.
func (r *ReadingRepository) Close() error {
	return nil
}

// scanReading scans a reading row from either a pgx.Row or pgx.Rows.
func scanReading(row pgx.Row) (*domain.Reading, error) {
	reading := &domain.Reading{}
	var symptomsJSON string
	var position, exerciseContext string

	err := row.Scan(
		&reading.ID,
		&reading.Timestamp,
		&reading.Systolic,
		&reading.Diastolic,
		&reading.Pulse,
		&position,
		&exerciseContext,
		&symptomsJSON,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reading.BodyPosition = domain.BodyPosition(position)
	reading.ExerciseContext = domain.ExerciseContext(exerciseContext)

	if err := json.Unmarshal([]byte(symptomsJSON), &reading.Symptoms); err != nil {
		return nil, fmt.Errorf("decoding symptoms: %w", err)
	}
	return reading, nil
}
