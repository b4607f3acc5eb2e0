package domain

import "time"

// Lead is the most recent private owner recovered from a dealer-owned
// vehicle's history. PurchaseDate is absent when that owner is the oldest
// entry with no date; SoldDate is when the next owner took over.
type Lead struct {
	Name                   *string    `json:"name,omitempty"`
	PurchaseDate           *time.Time `json:"purchase_date,omitempty"`
	SoldDate               *time.Time `json:"sold_date,omitempty"`
	Details                *string    `json:"details,omitempty"`
	OwnershipDurationLabel *string    `json:"ownership_duration,omitempty"`
}
