package consumers

import (
	"context"
	"strings"

	"github.com/leadflow/leadflow-backend/internal/ownership/analyzer"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/service"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/messaging"
)

// RegistryQueue is the queue this service reads registry events from
const RegistryQueue = "lead-service.registry-events"

// RegistryConsumer analyzes ownership histories delivered by the registry fetcher
type RegistryConsumer struct {
	consumer *messaging.Consumer
	service  *service.Service
	logger   *logger.Logger
}

// NewRegistryConsumer creates a new registry event consumer
func NewRegistryConsumer(rmq *messaging.RabbitMQ, svc *service.Service, log *logger.Logger) (*RegistryConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, RegistryQueue, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeRegistryEvents, "registry.#"); err != nil {
		return nil, err
	}

	c := &RegistryConsumer{
		consumer: consumer,
		service:  svc,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventRegistryHistoryFetched, c.handleHistoryFetched)

	return c, nil
}

// Start starts consuming messages
func (c *RegistryConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *RegistryConsumer) handleHistoryFetched(ctx context.Context, event *messaging.Event) error {
	var data messaging.RegistryHistoryFetchedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	log := c.logger.WithCorrelationID(messaging.GetCorrelationID(ctx))
	log.Info().
		Str("reg_nr", data.RegNr).
		Int("owners", len(data.Owners)).
		Msg("received registry history")

	in := analyzer.Input{
		RegNr:   data.RegNr,
		History: toRawHistory(data.Owners),
	}
	vehicle := service.VehicleInput{
		ChassisNr:  data.ChassisNr,
		SellerName: optional(data.SellerName),
		Phone:      optional(data.Phone),
	}

	if _, err := c.service.AnalyzeWith(ctx, in, vehicle); err != nil {
		// A malformed history will not parse on redelivery either.
		if errors.Is(err, errors.ErrInvalidHistoryEntry) {
			log.Warn().Err(err).Str("reg_nr", data.RegNr).Msg("dropping registry history with invalid entry")
			return nil
		}
		return err
	}

	return nil
}

func toRawHistory(owners []messaging.RegistryOwner) []domain.RawOwnershipEvent {
	raw := make([]domain.RawOwnershipEvent, len(owners))
	for i, o := range owners {
		raw[i] = domain.RawOwnershipEvent{
			Date:           o.Date,
			Name:           o.Name,
			OwnerTypeLabel: o.OwnerTypeLabel,
			OwnerClass:     o.OwnerClass,
			Details:        o.Details,
		}
	}
	return raw
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
