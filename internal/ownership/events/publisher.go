package events

import (
	"context"
	"time"

	"github.com/leadflow/leadflow-backend/internal/ownership/analyzer"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/messaging"
)

// OwnershipEventPublisher publishes ownership analysis events. Failures are
// logged only.
type OwnershipEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewOwnershipEventPublisher declares the ownership exchange and creates a publisher on it
func NewOwnershipEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OwnershipEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeOwnershipEvents, "lead-service", log)
	if err != nil {
		return nil, err
	}
	return NewOwnershipEventPublisherWith(publisher, log), nil
}

// NewOwnershipEventPublisherWith wraps an existing publisher
func NewOwnershipEventPublisherWith(publisher messaging.EventPublisher, log *logger.Logger) *OwnershipEventPublisher {
	return &OwnershipEventPublisher{publisher: publisher, logger: log}
}

// PublishAnalyzed publishes the situation computed for a vehicle
func (p *OwnershipEventPublisher) PublishAnalyzed(ctx context.Context, result *analyzer.Result) {
	data := messaging.OwnershipAnalyzedEvent{
		RegNr:     result.RegNr,
		Situation: string(result.Situation.Kind()),
	}
	result.Situation.Accept(&analyzedEventFiller{event: &data})

	if err := p.publisher.Publish(ctx, messaging.EventOwnershipAnalyzed, data); err != nil {
		p.logger.Error().Err(err).Str("reg_nr", result.RegNr).Msg("failed to publish ownership analyzed event")
	}
}

// PublishLeadExtracted publishes a lead recovered from a dealer-owned vehicle.
// leadID is empty when the lead was not stored.
func (p *OwnershipEventPublisher) PublishLeadExtracted(ctx context.Context, regNr, leadID string, dealerName *string, lead *domain.Lead) {
	data := messaging.OwnershipLeadExtractedEvent{
		RegNr:        regNr,
		LeadID:       leadID,
		PurchaseDate: lead.PurchaseDate,
		SoldDate:     lead.SoldDate,
	}
	if lead.Name != nil {
		data.Name = *lead.Name
	}
	if lead.OwnershipDurationLabel != nil {
		data.OwnershipDuration = *lead.OwnershipDurationLabel
	}
	if dealerName != nil {
		data.DealerName = *dealerName
	}

	if err := p.publisher.Publish(ctx, messaging.EventOwnershipLeadExtracted, data); err != nil {
		p.logger.Error().Err(err).Str("reg_nr", regNr).Msg("failed to publish lead extracted event")
	}
}

type analyzedEventFiller struct {
	event *messaging.OwnershipAnalyzedEvent
}

func (f *analyzedEventFiller) Private()      {}
func (f *analyzedEventFiller) Intermediary() {}

func (f *analyzedEventFiller) Dealer(lead *domain.Lead, _ *time.Time) {
	f.event.HasLead = lead != nil
}

func (f *analyzedEventFiller) Sold(boughtBy string) {
	f.event.BoughtBy = boughtBy
}
