package repository_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/repository"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadRowColumns = []string{
	"id", "reg_nr", "chassis_nr", "owner_name", "phone", "source",
	"purchase_date", "sold_date", "ownership_duration", "details", "created_at",
}

func TestLeadRepository_Create(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	lead := s.Fixtures.Lead(testutil.WithLeadID(""), testutil.WithRegNr("ABC123"))
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.MockDB.ExpectQuery("INSERT INTO leads").
		WithArgs(testutil.AnyUUID{}, "ABC123", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			domain.SourceListing, nil, nil, nil, nil).
		WillReturnRows(testutil.MockRows("created_at").AddRow(createdAt))

	err := repo.Create(context.Background(), &lead)
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, createdAt, lead.CreatedAt)
}

func TestLeadRepository_Create_Conflict(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	lead := s.Fixtures.Lead(testutil.WithSource(domain.SourceOwnershipChain))
	s.MockDB.ExpectQuery("INSERT INTO leads").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "leads_ownership_reg_nr_key"})

	err := repo.Create(context.Background(), &lead)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestLeadRepository_GetByID(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	id := "0b8f6a53-3c43-4f4e-9e3e-3f7c1b2a9d10"
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.MockDB.ExpectQuery("SELECT id, reg_nr").
		WithArgs(id).
		WillReturnRows(testutil.MockRows(leadRowColumns...).
			AddRow(id, "ABC123", nil, "Anna Andersson", "070-1234567", domain.SourceOwnershipChain,
				time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				"2 år, 1 mån", nil, created))

	lead, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", *lead.RegNr)
	assert.Nil(t, lead.ChassisNr)
	assert.Equal(t, "2 år, 1 mån", *lead.OwnershipDuration)
}

func TestLeadRepository_GetByID_NotFound(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	s.MockDB.ExpectQuery("SELECT id, reg_nr").
		WillReturnRows(testutil.MockRows(leadRowColumns...))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLeadRepository_List(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.MockDB.ExpectQuery("SELECT COUNT(*) FROM leads").
		WillReturnRows(testutil.MockRows("count").AddRow(41))
	s.MockDB.ExpectQuery("SELECT id, reg_nr").
		WithArgs(20, 20).
		WillReturnRows(testutil.MockRows(leadRowColumns...).
			AddRow("l1", "ABC123", nil, nil, nil, domain.SourceListing, nil, nil, nil, nil, created))

	leads, total, err := repo.List(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(41), total)
	require.Len(t, leads, 1)
	assert.Equal(t, "l1", leads[0].ID)
}

func TestLeadRepository_ListAll(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.MockDB.ExpectQuery("SELECT id, reg_nr, chassis_nr, owner_name, phone, source, created_at").
		WillReturnRows(testutil.MockRows("id", "reg_nr", "chassis_nr", "owner_name", "phone", "source", "created_at").
			AddRow("l1", "ABC123", nil, "Anna", nil, domain.SourceListing, created).
			AddRow("l2", "abc123", "YV1", nil, "070", domain.SourceImport, created))

	leads, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "YV1", *leads[1].ChassisNr)
	assert.Nil(t, leads[1].OwnerName)
}

func TestLeadRepository_DeleteByIDs(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	ids := []string{"a", "b", "c"}
	s.MockDB.ExpectBegin()
	s.MockDB.ExpectExec("DELETE FROM leads WHERE id = ANY($1)").
		WithArgs(pq.Array([]string{"a", "b"})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.MockDB.ExpectExec("DELETE FROM leads WHERE id = ANY($1)").
		WithArgs(pq.Array([]string{"c"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.MockDB.ExpectCommit()

	deleted, err := repo.DeleteByIDs(context.Background(), ids, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestLeadRepository_DeleteByIDs_RollsBackAllBatches(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	s.MockDB.ExpectBegin()
	s.MockDB.ExpectExec("DELETE FROM leads").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.MockDB.ExpectExec("DELETE FROM leads").
		WillReturnError(stderrors.New("connection reset"))
	s.MockDB.ExpectRollback()

	deleted, err := repo.DeleteByIDs(context.Background(), []string{"a", "b"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, deleted)
}

func TestLeadRepository_DeleteByIDs_Empty(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	repo := repository.NewLeadRepository(s.DB)

	deleted, err := repo.DeleteByIDs(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
