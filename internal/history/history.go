// Package history defines persistence for completed consultation analyses.
//
// Each analyzed consultation becomes one [Entry]: the symptom text, the
// predicted specialty with its confidence, the assigned urgency level, and
// the referral pathway. The [Store] interface is public within the module so
// the API layer can run against the PostgreSQL implementation in production
// and an in-memory mock in tests.
//
// Every implementation must be safe for concurrent use.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultRecentLimit caps Recent queries when the caller passes a
// non-positive limit.
const DefaultRecentLimit = 20

// Entry is one persisted consultation analysis.
type Entry struct {
	// ID uniquely identifies the consultation.
	ID uuid.UUID `json:"id"`

	// Text is the symptom description that was analyzed.
	Text string `json:"text"`

	// Specialty is the predicted medical specialty.
	Specialty string `json:"specialty"`

	// Confidence is the classifier's probability for Specialty (0.0–1.0).
	Confidence float64 `json:"confidence"`

	// Level is the assigned urgency level (1–5).
	Level int `json:"level"`

	// Pathway is the referral pathway the consultation was routed to.
	Pathway string `json:"pathway"`

	// CreatedAt is when the analysis was stored.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves consultation entries.
type Store interface {
	// Save persists one entry. A zero ID is assigned a fresh UUID; a zero
	// CreatedAt is stamped with the current time.
	Save(ctx context.Context, entry Entry) error

	// Recent returns the most recent entries, newest first. A non-positive
	// limit applies [DefaultRecentLimit].
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
