package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	leaddomain "github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/errors"
)

// MemoryLeadStore is an in-memory lead store for service and handler tests.
// It enforces the ownership-chain uniqueness rule of the leads table.
type MemoryLeadStore struct {
	mu         sync.Mutex
	leads      map[string]leaddomain.LeadRecord
	listCalls  int
	batchSizes []int

	// DeleteErr makes DeleteByIDs fail when set
	DeleteErr error
}

// NewMemoryLeadStore creates a store holding leads
func NewMemoryLeadStore(leads ...leaddomain.LeadRecord) *MemoryLeadStore {
	s := &MemoryLeadStore{leads: make(map[string]leaddomain.LeadRecord)}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *MemoryLeadStore) Create(ctx context.Context, lead *leaddomain.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead.Source == leaddomain.SourceOwnershipChain {
		for _, existing := range s.leads {
			if existing.Source == leaddomain.SourceOwnershipChain &&
				lowerOrEmpty(existing.RegNr) == lowerOrEmpty(lead.RegNr) &&
				lowerOrEmpty(existing.OwnerName) == lowerOrEmpty(lead.OwnerName) {
				return errors.Conflict("lead already exists for this vehicle and owner")
			}
		}
	}

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = DefaultCreatedAt
	}
	s.leads[lead.ID] = *lead
	return nil
}

func (s *MemoryLeadStore) GetByID(ctx context.Context, id string) (*leaddomain.LeadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, errors.NotFound("lead")
	}
	return &lead, nil
}

// List pages over the leads ordered by id
func (s *MemoryLeadStore) List(ctx context.Context, page, perPage int) ([]*leaddomain.LeadRecord, int64, error) {
	all := s.sorted()
	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}

	out := make([]*leaddomain.LeadRecord, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, &all[i])
	}
	return out, int64(len(all)), nil
}

func (s *MemoryLeadStore) ListAll(ctx context.Context) ([]leaddomain.LeadRecord, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	return s.sorted(), nil
}

func (s *MemoryLeadStore) DeleteByIDs(ctx context.Context, ids []string, batchSize int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchSizes = append(s.batchSizes, batchSize)
	if s.DeleteErr != nil {
		return 0, s.DeleteErr
	}

	deleted := 0
	for _, id := range ids {
		if _, ok := s.leads[id]; ok {
			delete(s.leads, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of stored leads
func (s *MemoryLeadStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

// ListAllCalls returns how often the dedup population was loaded
func (s *MemoryLeadStore) ListAllCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// BatchSizes returns the batch size passed to each DeleteByIDs call
func (s *MemoryLeadStore) BatchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batchSizes...)
}

func (s *MemoryLeadStore) sorted() []leaddomain.LeadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leaddomain.LeadRecord, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func lowerOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(*s)
}
