package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bp-trend-server/internal/domain"
)

// ExportJSON exports the full journal to a JSON writer. It works against any
// store backend.
func ExportJSON(ctx context.Context, store domain.ReadingStore, writer io.Writer) error {
	readings, err := store.ListReadings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list readings: %w", err)
	}
	if readings == nil {
		readings = []*domain.Reading{}
	}

	profile, err := store.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	export := &JournalExport{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Count:      len(readings),
		Readings:   readings,
		Profile:    profile,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports a journal export from a JSON reader. Readings already
// present (same ID) are skipped rather than overwritten; the profile is only
// imported when the store has none yet.
func ImportJSON(ctx context.Context, store domain.ReadingStore, reader io.Reader) (imported int, skipped int, err error) {
	var export JournalExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, r := range export.Readings {
		existing, err := store.GetReading(ctx, r.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if existing != nil {
			skipped++
			continue
		}

		if err := store.SaveReading(ctx, r); err != nil {
			return imported, skipped, fmt.Errorf("failed to save reading: %w", err)
		}
		imported++
	}

	if export.Profile != nil {
		existing, err := store.GetProfile(ctx)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to load profile: %w", err)
		}
		if existing == nil {
			if err := store.SaveProfile(ctx, export.Profile); err != nil {
				return imported, skipped, fmt.Errorf("failed to save profile: %w", err)
			}
		}
	}

	return imported, skipped, nil
}
