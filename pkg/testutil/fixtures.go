package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	leaddomain "github.com/leadflow/leadflow-backend/internal/leads/domain"
	ownerdomain "github.com/leadflow/leadflow-backend/internal/ownership/domain"
)

// FixtureFactory creates test fixtures with unique defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// LeadOption customizes a lead fixture
type LeadOption func(*leaddomain.LeadRecord)

// DefaultCreatedAt is the base creation time of fixture leads
var DefaultCreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Lead creates a listing lead with a unique reg nr, chassis nr, name and phone
func (f *FixtureFactory) Lead(opts ...LeadOption) leaddomain.LeadRecord {
	seq := f.nextSeq()

	lead := leaddomain.LeadRecord{
		ID:        uuid.New().String(),
		RegNr:     PtrString(fmt.Sprintf("TST%03d", seq)),
		ChassisNr: PtrString(fmt.Sprintf("YV1TEST%010d", seq)),
		OwnerName: PtrString(fmt.Sprintf("Testperson %d", seq)),
		Phone:     PtrString(fmt.Sprintf("070-%07d", seq)),
		Source:    leaddomain.SourceListing,
		CreatedAt: DefaultCreatedAt.Add(time.Duration(seq) * time.Minute),
	}

	for _, opt := range opts {
		opt(&lead)
	}

	return lead
}

// WithLeadID sets the lead id
func WithLeadID(id string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.ID = id }
}

// WithRegNr sets the registration number; "" clears it
func WithRegNr(regNr string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.RegNr = optional(regNr) }
}

// WithChassisNr sets the chassis number; "" clears it
func WithChassisNr(chassisNr string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.ChassisNr = optional(chassisNr) }
}

// WithOwnerName sets the owner name; "" clears it
func WithOwnerName(name string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.OwnerName = optional(name) }
}

// WithPhone sets the phone number; "" clears it
func WithPhone(phone string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.Phone = optional(phone) }
}

// WithSource sets the lead source
func WithSource(source string) LeadOption {
	return func(l *leaddomain.LeadRecord) { l.Source = source }
}

// Leads creates n leads with default values
func (f *FixtureFactory) Leads(n int) []leaddomain.LeadRecord {
	leads := make([]leaddomain.LeadRecord, n)
	for i := range leads {
		leads[i] = f.Lead()
	}
	return leads
}

// HistoryEntry is a compact description of one owner for History
type HistoryEntry struct {
	Date  string
	Name  string
	Label string
	Class string
}

// Dealer describes a dealer owner entry
func Dealer(date, name string) HistoryEntry {
	return HistoryEntry{Date: date, Name: name, Label: "Bilhandlare", Class: string(ownerdomain.OwnerClassCompany)}
}

// Person describes a private owner entry
func Person(date, name string) HistoryEntry {
	return HistoryEntry{Date: date, Name: name, Label: "Privatperson", Class: string(ownerdomain.OwnerClassPerson)}
}

// History builds a raw registry history, most recent owner first
func (f *FixtureFactory) History(entries ...HistoryEntry) []ownerdomain.RawOwnershipEvent {
	raw := make([]ownerdomain.RawOwnershipEvent, len(entries))
	for i, e := range entries {
		raw[i] = ownerdomain.RawOwnershipEvent{
			Date:           e.Date,
			Name:           e.Name,
			OwnerTypeLabel: e.Label,
			OwnerClass:     e.Class,
		}
	}
	return raw
}

// DealerHistory is a dealer-held vehicle with two earlier private owners
func (f *FixtureFactory) DealerHistory() []ownerdomain.RawOwnershipEvent {
	return f.History(
		Dealer("2024-03-01", "Norrlands Bil AB"),
		Person("2022-01-10", "Anna Andersson"),
		Person("2019-05-05", "Bo Berg"),
	)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
