package testutil

import (
	"context"
	"testing"
	"time"

	"karma/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase represents a disposable PostgreSQL instance for one test
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// SetupTestDatabase starts a PostgreSQL container, runs migrations and
// registers cleanup on the test
func SetupTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	labels := map[string]string{
		"test":      "karma-repository",
		"test-name": t.Name(),
		"timestamp": time.Now().Format("20060102-150405"),
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("karma_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(labels),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() {
		testDB.cleanup(t)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	testDB.URL = connStr

	require.NoError(t, database.Migrate(connStr))

	db, err := database.NewConnection(ctx, connStr)
	require.NoError(t, err)
	testDB.DB = db

	return testDB
}

func (td *TestDatabase) cleanup(t *testing.T) {
	if td.DB != nil {
		td.DB.Close()
	}
	if td.Container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := td.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate test container: %v", err)
		}
	}
}
