package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leadflow/leadflow-backend/internal/leads/dedup"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/events"
	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// Session is one operator's duplicate check as returned to the API
type Session struct {
	ID        string                 `json:"session_id"`
	State     dedup.State            `json:"state"`
	Report    *dedup.DuplicateReport `json:"report,omitempty"`
	ExpiresAt time.Time              `json:"expires_at"`
}

type session struct {
	id        string
	workflow  *dedup.Workflow
	expiresAt time.Time
}

// DedupService runs duplicate checks and keeps their reports in memory
// until the operator confirms or the session expires
type DedupService struct {
	store     LeadStore
	publisher *events.LeadEventPublisher
	logger    *logger.Logger
	batchSize int
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewDedupService creates a new dedup service
func NewDedupService(store LeadStore, publisher *events.LeadEventPublisher, cfg config.DedupConfig, log *logger.Logger) *DedupService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DedupService{
		store:     store,
		publisher: publisher,
		logger:    log.WithComponent("dedup"),
		batchSize: cfg.DeleteBatchSize,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Check loads the lead population and checks candidateIDs against it.
// Criteria are validated before anything is loaded.
func (s *DedupService) Check(ctx context.Context, candidateIDs []string, criteria domain.MatchCriteria) (*Session, error) {
	if !criteria.Any() {
		return nil, errors.InvalidCriteria()
	}

	population, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	wf := dedup.NewWorkflow()
	report, err := wf.Run(candidateIDs, population, criteria)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:        uuid.New().String(),
		workflow:  wf,
		expiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.purgeExpiredLocked()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.publisher.PublishDuplicatesChecked(ctx, sess.id, report)

	s.logger.Info().
		Str("session_id", sess.id).
		Int("candidates", report.CandidateCount).
		Int("population", len(population)).
		Int("duplicate_count", report.DuplicateCount).
		Int("unique_count", report.UniqueCount).
		Int("missing", len(report.MissingIDs)).
		Msg("duplicate check finished")

	return s.view(sess), nil
}

// Report returns a session and its report
func (s *DedupService) Report(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// ConfirmDelete deletes the duplicates reported by a session. This is the
// only path through which duplicates are removed.
func (s *DedupService) ConfirmDelete(ctx context.Context, sessionID string) (*dedup.DeleteOutcome, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.workflow.ConfirmDelete(ctx, dedup.DeleterFunc(func(ctx context.Context, ids []string) (int, error) {
		return s.store.DeleteByIDs(ctx, ids, s.batchSize)
	}))
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("duplicate deletion failed")
		return nil, err
	}

	if outcome.Deleted > 0 {
		s.publisher.PublishDuplicatesDeleted(ctx, sessionID, outcome)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("deleted", outcome.Deleted).
		Int("requested", len(outcome.LeadIDs)).
		Str("operator", actor.Name(ctx)).
		Msg("duplicates deleted")

	return outcome, nil
}

func (s *DedupService) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.NotFound("dedup_session")
	}
	return sess, nil
}

// purgeExpiredLocked drops expired sessions that are not mid-deletion.
// s.mu must be held.
func (s *DedupService) purgeExpiredLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) && sess.workflow.State() != dedup.StateDeleting {
			delete(s.sessions, id)
		}
	}
}

func (s *DedupService) view(sess *session) *Session {
	return &Session{
		ID:        sess.id,
		State:     sess.workflow.State(),
		Report:    sess.workflow.Report(),
		ExpiresAt: sess.expiresAt,
	}
}
