package events

import (
	"context"
	"time"

	"github.com/leadflow/leadflow-backend/internal/leads/dedup"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/messaging"
)

// LeadEventPublisher publishes lead events. Publishing is best effort:
// failures are logged and never fail the operation that triggered them.
type LeadEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewLeadEventPublisher declares the lead exchange and creates a publisher on it
func NewLeadEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*LeadEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeLeadEvents, "lead-service", log)
	if err != nil {
		return nil, err
	}
	return NewLeadEventPublisherWith(publisher, log), nil
}

// NewLeadEventPublisherWith wraps an existing publisher
func NewLeadEventPublisherWith(publisher messaging.EventPublisher, log *logger.Logger) *LeadEventPublisher {
	return &LeadEventPublisher{publisher: publisher, logger: log}
}

// PublishLeadCreated publishes a lead created event
func (p *LeadEventPublisher) PublishLeadCreated(ctx context.Context, lead *domain.LeadRecord) {
	data := messaging.LeadCreatedEvent{
		LeadID: lead.ID,
		Source: lead.Source,
	}
	if lead.RegNr != nil {
		data.RegNr = *lead.RegNr
	}
	if lead.OwnerName != nil {
		data.Owner = *lead.OwnerName
	}

	if err := p.publisher.Publish(ctx, messaging.EventLeadCreated, data); err != nil {
		p.logger.Error().Err(err).Str("lead_id", lead.ID).Msg("failed to publish lead created event")
	}
}

// PublishDuplicatesChecked publishes the summary of a finished duplicate check
func (p *LeadEventPublisher) PublishDuplicatesChecked(ctx context.Context, sessionID string, report *dedup.DuplicateReport) {
	byType := make(map[string]int, len(report.ByType))
	for t, n := range report.ByType {
		byType[string(t)] = n
	}

	data := messaging.DuplicatesCheckedEvent{
		SessionID:      sessionID,
		CandidateCount: report.CandidateCount,
		UniqueCount:    report.UniqueCount,
		DuplicateCount: report.DuplicateCount,
		ByType:         byType,
	}

	if err := p.publisher.Publish(ctx, messaging.EventLeadDuplicatesChecked, data); err != nil {
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to publish duplicates checked event")
	}
}

// PublishDuplicatesDeleted publishes the ids removed by a confirmed deletion
func (p *LeadEventPublisher) PublishDuplicatesDeleted(ctx context.Context, sessionID string, outcome *dedup.DeleteOutcome) {
	data := messaging.DuplicatesDeletedEvent{
		SessionID:   sessionID,
		LeadIDs:     outcome.LeadIDs,
		Deleted:     outcome.Deleted,
		ConfirmedBy: actor.Name(ctx),
		DeletedAt:   time.Now().UTC(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventLeadDuplicatesDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to publish duplicates deleted event")
	}
}
