package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/questbank/questbank-backend/pkg/database"
	"github.com/questbank/questbank-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite creates a new integration test suite backed by a shared
// PostgreSQL container with the questions schema provisioned.
//
// Usage:
//
//	func TestQuestionsIntegration(t *testing.T) {
//	    testutil.SkipWithoutIntegration(t)
//	    suite, err := testutil.NewIntegrationSuite(context.Background())
//	    require.NoError(t, err)
//	    defer suite.TruncateQuestions(context.Background())
//	    // ...
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New("test", "test")
	wrappedDB, err := database.NewWithDSN(container.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := container.CreateQuestionsSchema(ctx, db); err != nil {
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        wrappedDB,
		Fixtures:  NewFixtureFactory(),
		Logger:    log,
	}, nil
}

// getOrCreateContainer returns the shared test container
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

// TruncateQuestions clears the questions table between tests.
func (s *IntegrationSuite) TruncateQuestions(ctx context.Context) error {
	_, err := s.RawDB.ExecContext(ctx, "TRUNCATE TABLE questions")
	return err
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}

// SkipWithoutIntegration skips the test unless integration tests are enabled
// via QUESTBANK_INTEGRATION_TESTS. Keeps the default `go test` run free of a
// container runtime requirement.
func SkipWithoutIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("QUESTBANK_INTEGRATION_TESTS") == "" {
		t.Skip("set QUESTBANK_INTEGRATION_TESTS=1 to run integration tests")
	}
}
