package domain

import (
	"time"
)

// Lead sources
const (
	SourceOwnershipChain = "ownership_chain"
	SourceListing        = "listing"
	SourceImport         = "import"
)

// LeadRecord is a stored prospect
type LeadRecord struct {
	ID                string     `json:"id" db:"id"`
	RegNr             *string    `json:"reg_nr,omitempty" db:"reg_nr"`
	ChassisNr         *string    `json:"chassis_nr,omitempty" db:"chassis_nr"`
	OwnerName         *string    `json:"owner_name,omitempty" db:"owner_name"`
	Phone             *string    `json:"phone,omitempty" db:"phone"`
	Source            string     `json:"source" db:"source"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`
	SoldDate          *time.Time `json:"sold_date,omitempty" db:"sold_date"`
	OwnershipDuration *string    `json:"ownership_duration,omitempty" db:"ownership_duration"`
	Details           *string    `json:"details,omitempty" db:"details"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// MatchType names the field a duplicate was found on
type MatchType string

const (
	MatchRegNr   MatchType = "reg_nr"
	MatchChassis MatchType = "chassis"
	MatchName    MatchType = "name"
	MatchPhone   MatchType = "phone"
)

// MatchTypes lists every match type in evaluation order
var MatchTypes = []MatchType{MatchRegNr, MatchChassis, MatchName, MatchPhone}

// MatchCriteria selects the fields compared by a duplicate check.
// At least one must be enabled. A field that is absent or holds only
// whitespace never matches, on any criterion.
type MatchCriteria struct {
	MatchRegNr   bool `json:"reg_nr"`
	MatchChassis bool `json:"chassis"`
	MatchName    bool `json:"name"`
	MatchPhone   bool `json:"phone"`
}

// Any reports whether at least one criterion is enabled
func (c MatchCriteria) Any() bool {
	return c.MatchRegNr || c.MatchChassis || c.MatchName || c.MatchPhone
}

// Enabled reports whether t is selected
func (c MatchCriteria) Enabled(t MatchType) bool {
	switch t {
	case MatchRegNr:
		return c.MatchRegNr
	case MatchChassis:
		return c.MatchChassis
	case MatchName:
		return c.MatchName
	case MatchPhone:
		return c.MatchPhone
	}
	return false
}

// MatchResult is one finding: LeadID agrees with MatchedAgainstID on MatchType
type MatchResult struct {
	LeadID           string    `json:"lead_id"`
	MatchedAgainstID string    `json:"matched_against_id"`
	MatchType        MatchType `json:"match_type"`
}

// Field returns the value compared for t, or nil when the record has none
func (l *LeadRecord) Field(t MatchType) *string {
	switch t {
	case MatchRegNr:
		return l.RegNr
	case MatchChassis:
		return l.ChassisNr
	case MatchName:
		return l.OwnerName
	case MatchPhone:
		return l.Phone
	}
	return nil
}
