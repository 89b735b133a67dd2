// Package repository holds the loaded event log as immutable snapshots.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/penalty/internal/domain/model"
)

// Meta describes where a snapshot's events came from.
type Meta struct {
	Origin   string
	Location string
	Warning  string
	LoadedAt time.Time
}

// Snapshot is an immutable view of the event log. Callers must not modify
// Events or the id slices.
type Snapshot struct {
	Meta

	// Events are ordered by date; events of the same day keep log order.
	Events      []model.Event
	Fingerprint uint64

	Earliest time.Time
	Latest   time.Time
	Shooters []string
	Keepers  []string
}

// FingerprintHex renders the fingerprint for cache keys and responses.
func (s *Snapshot) FingerprintHex() string {
	return fmt.Sprintf("%016x", s.Fingerprint)
}

// Entities returns the sorted ids seen in role.
func (s *Snapshot) Entities(role model.Role) []string {
	if role == model.Keeper {
		return s.Keepers
	}
	return s.Shooters
}

// Store provides the current event log.
type Store interface {
	// Replace publishes a new snapshot built from events. changed is false
	// when the content fingerprint matches the current snapshot.
	Replace(ctx context.Context, events []model.Event, meta Meta) (snap *Snapshot, changed bool)

	// Snapshot returns the current snapshot, or ErrNotLoaded before the
	// first Replace.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Count returns the number of events in the current snapshot.
	Count(ctx context.Context) int
}
