package service

import (
	"context"
	"strings"

	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/events"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// LeadStore is the persistence the lead services need
type LeadStore interface {
	Create(ctx context.Context, lead *domain.LeadRecord) error
	GetByID(ctx context.Context, id string) (*domain.LeadRecord, error)
	List(ctx context.Context, page, perPage int) ([]*domain.LeadRecord, int64, error)
	ListAll(ctx context.Context) ([]domain.LeadRecord, error)
	DeleteByIDs(ctx context.Context, ids []string, batchSize int) (int, error)
}

// LeadService handles lead records
type LeadService struct {
	store     LeadStore
	publisher *events.LeadEventPublisher
	logger    *logger.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(store LeadStore, publisher *events.LeadEventPublisher, log *logger.Logger) *LeadService {
	return &LeadService{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// Create stores a lead. Identifiers are trimmed and blank ones dropped;
// reg and chassis numbers are stored upper-case.
func (s *LeadService) Create(ctx context.Context, lead *domain.LeadRecord) error {
	lead.RegNr = normalizeIdentifier(lead.RegNr)
	lead.ChassisNr = normalizeIdentifier(lead.ChassisNr)
	lead.OwnerName = trimmed(lead.OwnerName)
	lead.Phone = trimmed(lead.Phone)
	lead.Details = trimmed(lead.Details)
	if lead.Source == "" {
		lead.Source = domain.SourceListing
	}

	if err := s.store.Create(ctx, lead); err != nil {
		return err
	}

	s.publisher.PublishLeadCreated(ctx, lead)

	s.logger.Info().
		Str("lead_id", lead.ID).
		Str("source", lead.Source).
		Msg("lead created")

	return nil
}

// GetByID gets a lead by id
func (s *LeadService) GetByID(ctx context.Context, id string) (*domain.LeadRecord, error) {
	return s.store.GetByID(ctx, id)
}

// List lists leads with pagination
func (s *LeadService) List(ctx context.Context, page, perPage int) ([]*domain.LeadRecord, int64, error) {
	return s.store.List(ctx, page, perPage)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeIdentifier(s *string) *string {
	v := trimmed(s)
	if v == nil {
		return nil
	}
	upper := strings.ToUpper(*v)
	return &upper
}
