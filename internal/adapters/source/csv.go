package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"golang.org/x/text/unicode/norm"
)

type column int

const (
	colDate column = iota
	colShooter
	colKeeper
	colOutcome
	colZone
	numColumns
)

var headerAliases = map[string]column{ //nolint:gochecknoglobals // read-only lookup table
	"date":           colDate,
	"shooter name":   colShooter,
	"shooter":        colShooter,
	"player":         colShooter,
	"keeper name":    colKeeper,
	"keeper":         colKeeper,
	"goalkeeper":     colKeeper,
	"status":         colOutcome,
	"outcome":        colOutcome,
	"result":         colOutcome,
	"shoot position": colZone,
	"position":       colZone,
	"zone":           colZone,
}

var columnNames = [numColumns]string{"Date", "Shooter Name", "Keeper Name", "Status", "Shoot Position"} //nolint:gochecknoglobals // read-only

var dateLayouts = []string{"1/2/2006", time.DateOnly, time.RFC3339} //nolint:gochecknoglobals // read-only

// Parse reads a CSV event log. Headers are matched case-insensitively and
// unknown columns (e.g. Remark) are ignored. Blank lines are skipped; any
// other invalid row fails the whole parse with ErrInvalidRow.
func Parse(r io.Reader) ([]model.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, 256)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRow, err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		e, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRow, line, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func mapHeader(header []string) ([numColumns]int, error) {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("_", " ", "\ufeff", "").Replace(h)), " "))
		if c, ok := headerAliases[key]; ok && idx[c] < 0 {
			idx[c] = i
		}
	}
	for c := colDate; c < colZone; c++ {
		if idx[c] < 0 {
			return idx, fmt.Errorf("%w: %s", ErrMissingColumn, columnNames[c])
		}
	}
	return idx, nil
}

func parseRow(rec []string, idx [numColumns]int) (model.Event, error) {
	field := func(c column) string {
		if idx[c] < 0 || idx[c] >= len(rec) {
			return ""
		}
		return rec[idx[c]]
	}
	date, err := ParseDate(field(colDate))
	if err != nil {
		return model.Event{}, err
	}
	outcome, err := model.ParseOutcome(field(colOutcome))
	if err != nil {
		return model.Event{}, err
	}
	zone, err := model.ParseZone(field(colZone))
	if err != nil {
		return model.Event{}, err
	}
	return model.NewEvent(date, NormalizeName(field(colShooter)), NormalizeName(field(colKeeper)), outcome, zone)
}

// ParseDate accepts 01/02/2006, 2006-01-02 and RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date", model.ErrMissingField)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// NormalizeName trims, collapses inner whitespace and applies Unicode NFC so
// visually identical names from different keyboards compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Write encodes events in the canonical column order.
func Write(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columnNames[:]); err != nil {
		return err
	}
	for _, e := range events {
		rec := []string{e.Date.Format("01/02/2006"), e.Shooter, e.Keeper, string(e.Outcome), string(e.Zone)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
