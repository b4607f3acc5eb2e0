package service

import (
	"context"
	"strings"
	"time"

	leaddomain "github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/analyzer"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/events"
	"github.com/leadflow/leadflow-backend/internal/ownership/registry"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// HistoryFetcher loads a vehicle's ownership chain from the registry
type HistoryFetcher interface {
	FetchVehicle(ctx context.Context, regNr string) (*registry.VehicleHistory, error)
}

// LeadWriter stores recovered leads
type LeadWriter interface {
	Create(ctx context.Context, lead *leaddomain.LeadRecord) error
}

// Analysis is an analyzed vehicle. LeadID is set when a recovered lead was
// stored by this call.
type Analysis struct {
	*analyzer.Result
	LeadID string `json:"lead_id,omitempty"`
}

// BatchItem is the outcome for one vehicle of a batch
type BatchItem struct {
	RegNr    string
	Analysis *Analysis
	Err      error
}

// VehicleInput is the optional context known about a vehicle beyond its history
type VehicleInput struct {
	ChassisNr  string
	SellerName *string
	Phone      *string
}

// Service runs ownership analysis and stores the leads it recovers
type Service struct {
	analyzer  *analyzer.Analyzer
	fetcher   HistoryFetcher
	leads     LeadWriter
	publisher *events.OwnershipEventPublisher
	cfg       config.OwnershipConfig
	logger    *logger.Logger
}

// NewService creates a new ownership service. fetcher may be nil when no
// registry is configured; leads may be nil to skip persistence.
func NewService(
	a *analyzer.Analyzer,
	fetcher HistoryFetcher,
	leads LeadWriter,
	publisher *events.OwnershipEventPublisher,
	cfg config.OwnershipConfig,
	log *logger.Logger,
) *Service {
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	return &Service{
		analyzer:  a,
		fetcher:   fetcher,
		leads:     leads,
		publisher: publisher,
		cfg:       cfg,
		logger:    log.WithComponent("ownership"),
	}
}

// Analyze analyzes a supplied history
func (s *Service) Analyze(ctx context.Context, in analyzer.Input) (*Analysis, error) {
	return s.analyze(ctx, in, VehicleInput{SellerName: in.SellerName})
}

// AnalyzeWith analyzes a supplied history together with listing details
// used when the recovered lead is stored
func (s *Service) AnalyzeWith(ctx context.Context, in analyzer.Input, vehicle VehicleInput) (*Analysis, error) {
	if in.SellerName == nil {
		in.SellerName = vehicle.SellerName
	}
	return s.analyze(ctx, in, vehicle)
}

// AnalyzeVehicle fetches the history of regNr from the registry and analyzes it
func (s *Service) AnalyzeVehicle(ctx context.Context, regNr string, sellerName *string) (*Analysis, error) {
	if s.fetcher == nil {
		return nil, errors.Upstream(nil)
	}

	vehicle, err := s.fetcher.FetchVehicle(ctx, regNr)
	if err != nil {
		return nil, err
	}

	in := analyzer.Input{
		RegNr:      vehicle.RegNr,
		SellerName: sellerName,
		History:    vehicle.Owners,
	}
	return s.analyze(ctx, in, VehicleInput{ChassisNr: vehicle.ChassisNr, SellerName: sellerName})
}

// AnalyzeBatch fetches and analyzes many vehicles with bounded concurrency.
// A failing vehicle is reported in its item and does not stop the others.
// Items are returned in input order.
func (s *Service) AnalyzeBatch(ctx context.Context, regNrs []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(regNrs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, regNr := range regNrs {
		items[i].RegNr = regNr
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			items[i].Analysis, items[i].Err = s.AnalyzeVehicle(gctx, regNr, nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	s.logger.Info().
		Int("vehicles", len(regNrs)).
		Int("failed", failed).
		Msg("batch analysis finished")

	return items, nil
}

func (s *Service) analyze(ctx context.Context, in analyzer.Input, vehicle VehicleInput) (*Analysis, error) {
	result, err := s.analyzer.Analyze(in)
	if err != nil {
		s.logger.Warn().Err(err).Str("reg_nr", in.RegNr).Msg("ownership history rejected")
		return nil, err
	}

	analysis := &Analysis{Result: result}

	if lead := dealerLead(result.Situation); lead != nil {
		leadID, err := s.storeLead(ctx, result, lead, vehicle)
		if err != nil {
			return nil, err
		}
		analysis.LeadID = leadID
		s.publisher.PublishLeadExtracted(ctx, result.RegNr, leadID, result.CurrentOwner, lead)
	}

	s.publisher.PublishAnalyzed(ctx, result)

	s.logger.Info().
		Str("reg_nr", result.RegNr).
		Str("situation", string(result.Situation.Kind())).
		Bool("dealer_or_rental", result.IsDealerOrRental).
		Str("lead_id", analysis.LeadID).
		Msg("vehicle analyzed")

	return analysis, nil
}

// storeLead persists a recovered lead. A lead already stored for the same
// vehicle and owner is not an error; its id is then unknown and "" is returned.
func (s *Service) storeLead(ctx context.Context, result *analyzer.Result, lead *domain.Lead, vehicle VehicleInput) (string, error) {
	if !s.cfg.PersistLeads || s.leads == nil || result.RegNr == "" {
		return "", nil
	}

	regNr := strings.ToUpper(result.RegNr)
	record := &leaddomain.LeadRecord{
		RegNr:             &regNr,
		ChassisNr:         optional(strings.ToUpper(vehicle.ChassisNr)),
		OwnerName:         lead.Name,
		Phone:             vehicle.Phone,
		Source:            leaddomain.SourceOwnershipChain,
		PurchaseDate:      lead.PurchaseDate,
		SoldDate:          lead.SoldDate,
		OwnershipDuration: lead.OwnershipDurationLabel,
		Details:           lead.Details,
	}

	if err := s.leads.Create(ctx, record); err != nil {
		if errors.Is(err, errors.ErrConflict) {
			s.logger.Debug().Str("reg_nr", regNr).Msg("lead already stored")
			return "", nil
		}
		return "", err
	}

	return record.ID, nil
}

// dealerLead returns the lead of a dealer situation
func dealerLead(s domain.Situation) *domain.Lead {
	v := &leadVisitor{}
	s.Accept(v)
	return v.lead
}

type leadVisitor struct {
	lead *domain.Lead
}

func (v *leadVisitor) Private()             {}
func (v *leadVisitor) Intermediary()        {}
func (v *leadVisitor) Sold(boughtBy string) {}

func (v *leadVisitor) Dealer(lead *domain.Lead, _ *time.Time) {
	v.lead = lead
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
