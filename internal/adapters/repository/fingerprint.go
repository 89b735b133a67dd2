package repository

import (
	"github.com/cespare/xxhash/v2"

	"github.com/okian/penalty/internal/domain/model"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Fingerprint hashes the canonical form of events in order. Two logs with the
// same rows in the same order share a fingerprint.
func Fingerprint(events []model.Event) uint64 {
	d := xxhash.New()
	for _, e := range events {
		_, _ = d.WriteString(e.Date.Format("2006-01-02"))
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(e.Shooter)
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(e.Keeper)
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(string(e.Outcome))
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(string(e.Zone))
		_, _ = d.WriteString(recordSep)
	}
	return d.Sum64()
}
