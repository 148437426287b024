// Package journal provides persistent storage for blood pressure readings
// and the singleton user profile. Two backends implement the same store
// interface: an embedded SQLite file for single-user deployments and
// PostgreSQL for the full server.
package journal

import (
	"time"

	"github.com/bp-trend-server/internal/domain"
)

// ExportVersion is the current journal export format version.
const ExportVersion = "1.0"

// JournalExport represents the JSON export format. It carries the full
// reading history plus the profile so a journal can be moved between
// backends or devices in one file.
type JournalExport struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Count      int                 `json:"count"`
	Readings   []*domain.Reading   `json:"readings"`
	Profile    *domain.UserProfile `json:"profile,omitempty"`
}
