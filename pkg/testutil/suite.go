package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/leadflow/leadflow-backend/pkg/database"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

var (
	// Shared across all integration tests of a package
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a real PostgreSQL database for integration tests
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite starts (or reuses) the shared container and applies schemas.
//
// Usage:
//
//	func TestLeadRepository_Integration(t *testing.T) {
//	    suite := testutil.NewIntegrationSuite(t, repository.Schema)
//	    repo := repository.NewLeadRepository(suite.DB)
//	    ...
//	}
func NewIntegrationSuite(t *testing.T, schemas ...string) *IntegrationSuite {
	t.Helper()
	SkipIfShort(t)

	ctx := context.Background()
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	if err := ApplySchema(ctx, db, schemas...); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	log := logger.Nop()
	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        database.Wrap(db, log),
		Fixtures:  NewFixtureFactory(),
		Logger:    log,
	}
}

// Truncate empties the given tables and registers the same on cleanup
func (s *IntegrationSuite) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	truncate := func() {
		for _, table := range tables {
			if _, err := s.RawDB.Exec("TRUNCATE TABLE " + table); err != nil {
				t.Logf("warning: failed to truncate %s: %v", table, err)
			}
		}
	}
	truncate()
	t.Cleanup(truncate)
}

func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *sqlx.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect(ctx)
	})

	return globalContainer, globalDB, containerErr
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalDB != nil {
		globalDB.Close()
	}
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}

// UnitTestSuite bundles a sqlmock database and fixtures
type UnitTestSuite struct {
	MockDB   *MockDB
	DB       *database.DB
	Fixtures *FixtureFactory
	t        *testing.T
}

// NewUnitTestSuite creates a unit test suite and verifies mock expectations on cleanup
func NewUnitTestSuite(t *testing.T) *UnitTestSuite {
	mockDB := NewMockDB(t)
	s := &UnitTestSuite{
		MockDB:   mockDB,
		DB:       database.Wrap(mockDB.DB, logger.Nop()),
		Fixtures: NewFixtureFactory(),
		t:        t,
	}
	t.Cleanup(s.Cleanup)
	return s
}

// Cleanup verifies expectations and closes the mock
func (s *UnitTestSuite) Cleanup() {
	s.MockDB.ExpectationsWereMet(s.t)
	s.MockDB.Close()
}
