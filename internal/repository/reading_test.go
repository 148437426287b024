package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bp-trend-server/internal/database"
	"github.com/bp-trend-server/internal/domain"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS readings (
	id TEXT PRIMARY KEY,
	taken_at TIMESTAMP WITH TIME ZONE NOT NULL,
	systolic INTEGER NOT NULL,
	diastolic INTEGER NOT NULL,
	pulse INTEGER,
	body_position TEXT NOT NULL,
	exercise_context TEXT NOT NULL,
	symptoms TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	age INTEGER,
	weight_lbs DOUBLE PRECISION,
	gender TEXT,
	race_ethnicity TEXT,
	medical_conditions TEXT NOT NULL DEFAULT '[]',
	medications TEXT,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// newTestRepository spins up a PostgreSQL container, applies the schema, and
// returns a repository backed by it.
func newTestRepository(t *testing.T) *ReadingRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &domain.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "testdb",
		Username: "testuser",
		Password: "testpass",
		SSLMode:  "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	return NewReadingRepository(db.Pool, logger)
}

func sampleReading(id string, takenAt time.Time) *domain.Reading {
	pulse := 70
	return &domain.Reading{
		ID:              id,
		Timestamp:       takenAt,
		Systolic:        122,
		Diastolic:       78,
		Pulse:           &pulse,
		BodyPosition:    domain.PositionSitting,
		ExerciseContext: domain.ContextResting,
		Symptoms:        []domain.Symptom{domain.SymptomNone},
	}
}

func TestReadingRepository_CRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// Create
	reading := sampleReading("r-1", base)
	require.NoError(t, repo.SaveReading(ctx, reading))
	assert.False(t, reading.CreatedAt.IsZero())

	// Read
	got, err := repo.GetReading(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, 122, got.Systolic)
	require.NotNil(t, got.Pulse)
	assert.Equal(t, 70, *got.Pulse)
	assert.Equal(t, []domain.Symptom{domain.SymptomNone}, got.Symptoms)

	// Replace (same ID, edit semantics)
	reading.Systolic = 141
	reading.Pulse = nil
	require.NoError(t, repo.SaveReading(ctx, reading))

	got, err = repo.GetReading(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, 141, got.Systolic)
	assert.Nil(t, got.Pulse)

	// List ordering
	require.NoError(t, repo.SaveReading(ctx, sampleReading("r-2", base.Add(24*time.Hour))))
	list, err := repo.ListReadings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r-2", list[0].ID)

	// Delete
	require.NoError(t, repo.DeleteReading(ctx, "r-1"))
	_, err = repo.GetReading(ctx, "r-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteReading(ctx, "r-1"), domain.ErrNotFound)
}

func TestReadingRepository_Profile(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	profile, err := repo.GetProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	age := 61
	weight := 165.0
	require.NoError(t, repo.SaveProfile(ctx, &domain.UserProfile{
		Age:               &age,
		WeightLbs:         &weight,
		MedicalConditions: []string{"hypertension"},
	}))

	profile, err = repo.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 61, *profile.Age)
	assert.Equal(t, []string{"hypertension"}, profile.MedicalConditions)

	// Replace the singleton.
	newAge := 62
	require.NoError(t, repo.SaveProfile(ctx, &domain.UserProfile{Age: &newAge}))

	profile, err = repo.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 62, *profile.Age)
	assert.Nil(t, profile.WeightLbs)
}
