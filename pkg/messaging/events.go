package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Lead events
	EventLeadCreated           = "leads.lead.created"
	EventLeadDuplicatesChecked = "leads.duplicates.checked"
	EventLeadDuplicatesDeleted = "leads.duplicates.deleted"

	// Ownership events
	EventOwnershipLeadExtracted = "ownership.lead.extracted"
	EventOwnershipAnalyzed      = "ownership.vehicle.analyzed"

	// Registry events (published by the registry fetcher)
	EventRegistryHistoryFetched = "registry.history.fetched"
)

// Exchange names
const (
	ExchangeLeadEvents      = "leads.events"
	ExchangeOwnershipEvents = "ownership.events"
	ExchangeRegistryEvents  = "registry.events"

	// ExchangeDeadLetter receives messages rejected by any consumer
	ExchangeDeadLetter = "leadflow.dlx"
)

// Event is the envelope every message is wrapped in
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData decodes the event payload into v
func (e *Event) UnmarshalData(v interface{}) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

// LeadCreatedEvent is published when a lead record is stored
type LeadCreatedEvent struct {
	LeadID  string `json:"lead_id"`
	RegNr   string `json:"reg_nr,omitempty"`
	Source  string `json:"source"`
	Owner   string `json:"owner_name,omitempty"`
}

// DuplicatesCheckedEvent summarizes a finished duplicate check
type DuplicatesCheckedEvent struct {
	SessionID      string         `json:"session_id"`
	CandidateCount int            `json:"candidate_count"`
	UniqueCount    int            `json:"unique_count"`
	DuplicateCount int            `json:"duplicate_count"`
	ByType         map[string]int `json:"by_type"`
}

// DuplicatesDeletedEvent is published after an operator confirmed deletion
type DuplicatesDeletedEvent struct {
	SessionID   string    `json:"session_id"`
	LeadIDs     []string  `json:"lead_ids"`
	Deleted     int       `json:"deleted"`
	ConfirmedBy string    `json:"confirmed_by"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// OwnershipLeadExtractedEvent carries a previous private owner recovered
// from a dealer-owned vehicle
type OwnershipLeadExtractedEvent struct {
	RegNr             string     `json:"reg_nr"`
	LeadID            string     `json:"lead_id,omitempty"`
	Name              string     `json:"name,omitempty"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty"`
	SoldDate          *time.Time `json:"sold_date,omitempty"`
	OwnershipDuration string     `json:"ownership_duration,omitempty"`
	DealerName        string     `json:"dealer_name,omitempty"`
}

// OwnershipAnalyzedEvent reports the situation computed for a vehicle
type OwnershipAnalyzedEvent struct {
	RegNr     string `json:"reg_nr"`
	Situation string `json:"situation"`
	HasLead   bool   `json:"has_lead"`
	BoughtBy  string `json:"bought_by,omitempty"`
}

// RegistryOwner is one owner entry as delivered by the registry fetcher
type RegistryOwner struct {
	Date           string `json:"date"`
	Name           string `json:"name,omitempty"`
	OwnerTypeLabel string `json:"owner_type,omitempty"`
	OwnerClass     string `json:"owner_class,omitempty"`
	Details        string `json:"details,omitempty"`
}

// RegistryHistoryFetchedEvent is consumed when the registry fetcher has
// retrieved the ownership chain for a vehicle, most recent owner first
type RegistryHistoryFetchedEvent struct {
	RegNr      string          `json:"reg_nr"`
	ChassisNr  string          `json:"chassis_nr,omitempty"`
	SellerName string          `json:"seller_name,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Owners     []RegistryOwner `json:"owners"`
}
