package domain

import (
	"strings"
	"time"

	"github.com/leadflow/leadflow-backend/pkg/errors"
)

// DateLayout is the ISO calendar date format used by the registry
const DateLayout = "2006-01-02"

// OwnerClass is the coarse owner class supplied by the registry
type OwnerClass string

const (
	OwnerClassPerson  OwnerClass = "person"
	OwnerClassCompany OwnerClass = "company"
	OwnerClassUnknown OwnerClass = "unknown"
)

// ParseOwnerClass normalizes a registry class; anything unrecognized is unknown
func ParseOwnerClass(s string) OwnerClass {
	switch OwnerClass(strings.ToLower(strings.TrimSpace(s))) {
	case OwnerClassPerson:
		return OwnerClassPerson
	case OwnerClassCompany:
		return OwnerClassCompany
	default:
		return OwnerClassUnknown
	}
}

// OwnershipEvent is one registered owner of a vehicle. A history is a slice
// of events ordered most recent first; index 0 is the current owner.
type OwnershipEvent struct {
	Date           *time.Time `json:"date,omitempty"`
	Name           *string    `json:"name,omitempty"`
	OwnerTypeLabel *string    `json:"owner_type_label,omitempty"`
	OwnerClass     OwnerClass `json:"owner_class"`
	Details        *string    `json:"details,omitempty"`
}

// NameOrEmpty returns the owner name, or "" when redacted
func (e OwnershipEvent) NameOrEmpty() string {
	if e.Name == nil {
		return ""
	}
	return *e.Name
}

// RawOwnershipEvent is the wire shape delivered by the registry fetcher
type RawOwnershipEvent struct {
	Date           string `json:"date"`
	Name           string `json:"name,omitempty"`
	OwnerTypeLabel string `json:"owner_type,omitempty"`
	OwnerClass     string `json:"owner_class,omitempty"`
	Details        string `json:"details,omitempty"`
}

// ParseHistory converts raw registry events, keeping their order. Blank
// fields become absent. A date that is present but unparseable fails the
// whole history with an InvalidHistoryEntry error naming its index.
func ParseHistory(raw []RawOwnershipEvent) ([]OwnershipEvent, error) {
	history := make([]OwnershipEvent, 0, len(raw))
	for i, r := range raw {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, errors.InvalidHistoryEntry(i, r.Date, err)
		}
		history = append(history, OwnershipEvent{
			Date:           date,
			Name:           optional(r.Name),
			OwnerTypeLabel: optional(r.OwnerTypeLabel),
			OwnerClass:     ParseOwnerClass(r.OwnerClass),
			Details:        optional(r.Details),
		})
	}
	return history, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Timestamps are
// reduced to their UTC calendar date.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return nil, err
		}
		ts = ts.UTC()
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return &t, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
