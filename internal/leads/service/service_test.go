package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/leadflow/leadflow-backend/internal/leads/dedup"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/events"
	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/messaging"
	"github.com/leadflow/leadflow-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDedupService(store *testutil.MemoryLeadStore, pub *testutil.MockPublisher) *DedupService {
	log := logger.Nop()
	return NewDedupService(store, events.NewLeadEventPublisherWith(pub, log),
		config.DedupConfig{DeleteBatchSize: 50, SessionTTL: time.Minute}, log)
}

func TestLeadService_Create(t *testing.T) {
	store := testutil.NewMemoryLeadStore()
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	svc := NewLeadService(store, events.NewLeadEventPublisherWith(pub, log), log)

	lead := &domain.LeadRecord{
		RegNr:     testutil.PtrString(" abc123 "),
		ChassisNr: testutil.PtrString("  "),
		OwnerName: testutil.PtrString("Åsa Öberg "),
	}
	require.NoError(t, svc.Create(context.Background(), lead))

	assert.Equal(t, "ABC123", *lead.RegNr)
	assert.Nil(t, lead.ChassisNr)
	assert.Equal(t, "Åsa Öberg", *lead.OwnerName)
	assert.Equal(t, domain.SourceListing, lead.Source)

	created := pub.EventsOfType(messaging.EventLeadCreated)
	require.Len(t, created, 1)
	payload := created[0].(messaging.LeadCreatedEvent)
	assert.Equal(t, "ABC123", payload.RegNr)
	assert.Equal(t, lead.ID, payload.LeadID)
}

func TestLeadService_CreateSurvivesPublishFailure(t *testing.T) {
	store := testutil.NewMemoryLeadStore()
	pub := testutil.NewMockPublisher()
	pub.Err = stderrors.New("broker down")
	log := logger.Nop()
	svc := NewLeadService(store, events.NewLeadEventPublisherWith(pub, log), log)

	require.NoError(t, svc.Create(context.Background(), &domain.LeadRecord{Source: domain.SourceImport}))
	assert.Equal(t, 1, store.Count())
}

func TestDedupService_CheckAndConfirm(t *testing.T) {
	f := testutil.NewFixtureFactory()
	existing := f.Lead(testutil.WithRegNr("ABC123"))
	candidate := f.Lead(testutil.WithRegNr("abc123"))
	unique := f.Lead()
	store := testutil.NewMemoryLeadStore(existing, candidate, unique)
	pub := testutil.NewMockPublisher()
	svc := newDedupService(store, pub)
	ctx := context.Background()

	sess, err := svc.Check(ctx, []string{candidate.ID, unique.ID}, domain.MatchCriteria{MatchRegNr: true})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, dedup.StateReported, sess.State)
	assert.Equal(t, 1, sess.Report.DuplicateCount)
	assert.Equal(t, 1, sess.Report.UniqueCount)
	assert.Equal(t, []string{candidate.ID}, sess.Report.DuplicateLeadIDs)
	pub.AssertEventPublished(t, messaging.EventLeadDuplicatesChecked)

	// Nothing is removed until the operator confirms.
	assert.Equal(t, 3, store.Count())

	got, err := svc.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Report, got.Report)

	outcome, err := svc.ConfirmDelete(actor.WithActor(ctx, &actor.Actor{Name: "Maja"}), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Deleted)
	assert.Equal(t, []int{50}, store.BatchSizes())
	assert.Equal(t, 2, store.Count())
	deleted := pub.EventsOfType(messaging.EventLeadDuplicatesDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, "Maja", deleted[0].(messaging.DuplicatesDeletedEvent).ConfirmedBy)
	assert.Equal(t, []string{candidate.ID}, deleted[0].(messaging.DuplicatesDeletedEvent).LeadIDs)

	_, err = svc.ConfirmDelete(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
}

func TestDedupService_InvalidCriteriaSkipsStore(t *testing.T) {
	store := testutil.NewMemoryLeadStore()
	pub := testutil.NewMockPublisher()
	svc := newDedupService(store, pub)

	_, err := svc.Check(context.Background(), []string{"a"}, domain.MatchCriteria{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCriteria))
	assert.Equal(t, 0, store.ListAllCalls())
	pub.AssertNoEventsPublished(t)
}

func TestDedupService_DeleteFailureKeepsReport(t *testing.T) {
	f := testutil.NewFixtureFactory()
	a := f.Lead(testutil.WithPhone("070-1234567"))
	b := f.Lead(testutil.WithPhone("070-1234567"))
	store := testutil.NewMemoryLeadStore(a, b)
	store.DeleteErr = stderrors.New("connection reset")
	pub := testutil.NewMockPublisher()
	svc := newDedupService(store, pub)
	ctx := context.Background()

	sess, err := svc.Check(ctx, []string{a.ID}, domain.MatchCriteria{MatchPhone: true})
	require.NoError(t, err)

	_, err = svc.ConfirmDelete(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrDeleteFailed))

	got, err := svc.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, dedup.StateReported, got.State)
	assert.Equal(t, []string{a.ID}, got.Report.DuplicateLeadIDs)
	assert.Empty(t, pub.EventsOfType(messaging.EventLeadDuplicatesDeleted))

	store.DeleteErr = nil
	outcome, err := svc.ConfirmDelete(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Deleted)
}

func TestDedupService_EmptyDuplicateSet(t *testing.T) {
	f := testutil.NewFixtureFactory()
	lead := f.Lead()
	store := testutil.NewMemoryLeadStore(lead)
	pub := testutil.NewMockPublisher()
	svc := newDedupService(store, pub)
	ctx := context.Background()

	sess, err := svc.Check(ctx, []string{lead.ID}, domain.MatchCriteria{MatchRegNr: true, MatchName: true})
	require.NoError(t, err)

	outcome, err := svc.ConfirmDelete(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Deleted)
	assert.Empty(t, store.BatchSizes())
	assert.Empty(t, pub.EventsOfType(messaging.EventLeadDuplicatesDeleted))
}

func TestDedupService_SessionExpiry(t *testing.T) {
	f := testutil.NewFixtureFactory()
	lead := f.Lead()
	svc := newDedupService(testutil.NewMemoryLeadStore(lead), testutil.NewMockPublisher())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := svc.Check(context.Background(), []string{lead.ID}, domain.MatchCriteria{MatchRegNr: true})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), sess.ExpiresAt)

	now = now.Add(2 * time.Minute)
	_, err = svc.Report(context.Background(), sess.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDedupService_UnknownSession(t *testing.T) {
	svc := newDedupService(testutil.NewMemoryLeadStore(), testutil.NewMockPublisher())

	_, err := svc.ConfirmDelete(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
