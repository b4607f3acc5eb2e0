package domain

import (
	"encoding/json"
	"time"
)

// SituationKind names the variant held by a Situation
type SituationKind string

const (
	SituationPrivate      SituationKind = "private"
	SituationDealer       SituationKind = "dealer"
	SituationIntermediary SituationKind = "intermediary"
	SituationSold         SituationKind = "sold"
)

// Situation describes who currently holds a vehicle. It is a closed variant:
// read it through Accept so every case is handled.
type Situation struct {
	kind        SituationKind
	lead        *Lead
	dealerSince *time.Time
	boughtBy    string
}

// SituationVisitor receives exactly one call from Situation.Accept
type SituationVisitor interface {
	Private()
	Dealer(lead *Lead, dealerSince *time.Time)
	Intermediary()
	Sold(boughtBy string)
}

// PrivateSituation is a vehicle held by a private owner
func PrivateSituation() Situation {
	return Situation{kind: SituationPrivate}
}

// DealerSituation is a vehicle held by a dealer or rental company. lead is
// nil when no earlier private owner exists.
func DealerSituation(lead *Lead, dealerSince *time.Time) Situation {
	return Situation{kind: SituationDealer, lead: lead, dealerSince: dealerSince}
}

// IntermediarySituation is a vehicle registered to a sales intermediary
func IntermediarySituation() Situation {
	return Situation{kind: SituationIntermediary}
}

// SoldSituation is a vehicle whose advertised seller no longer owns it
func SoldSituation(boughtBy string) Situation {
	return Situation{kind: SituationSold, boughtBy: boughtBy}
}

// Kind returns the variant tag
func (s Situation) Kind() SituationKind {
	if s.kind == "" {
		return SituationPrivate
	}
	return s.kind
}

// Accept dispatches to the visitor method matching the variant
func (s Situation) Accept(v SituationVisitor) {
	switch s.Kind() {
	case SituationDealer:
		v.Dealer(s.lead, s.dealerSince)
	case SituationIntermediary:
		v.Intermediary()
	case SituationSold:
		v.Sold(s.boughtBy)
	default:
		v.Private()
	}
}

type situationJSON struct {
	Kind        SituationKind `json:"kind"`
	Lead        *Lead         `json:"lead,omitempty"`
	DealerSince *time.Time    `json:"dealer_since,omitempty"`
	BoughtBy    string        `json:"bought_by,omitempty"`
}

// MarshalJSON renders the variant with only the fields it carries
func (s Situation) MarshalJSON() ([]byte, error) {
	out := situationJSON{Kind: s.Kind()}
	s.Accept(&jsonVisitor{out: &out})
	return json.Marshal(out)
}

type jsonVisitor struct {
	out *situationJSON
}

func (j *jsonVisitor) Private()      {}
func (j *jsonVisitor) Intermediary() {}

func (j *jsonVisitor) Dealer(lead *Lead, dealerSince *time.Time) {
	j.out.Lead = lead
	j.out.DealerSince = dealerSince
}

func (j *jsonVisitor) Sold(boughtBy string) {
	j.out.BoughtBy = boughtBy
}
