package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container, applies the schema and returns
// its DSN. The container is terminated when the test finishes.
func setupTestDB(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("airops"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	source, err := Open(ctx, Config{Driver: DriverPQ, DSN: dsn})
	require.NoError(t, err, "failed to connect")
	defer source.Close()

	runMigrations(t, ctx, source)
	seed(t, ctx, source)

	return dsn
}

// runMigrations applies every SQL file from sql/postgres/ in name order
func runMigrations(t *testing.T, ctx context.Context, source *Source) {
	t.Helper()

	dir := filepath.Join(findProjectRoot(t), "sql", "postgres")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "failed to read migrations directory")

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err, "failed to read migration file: %s", file)

		_, err = source.DB().ExecContext(ctx, string(sql))
		require.NoError(t, err, "failed to execute migration: %s", file)
	}
}

const seedSQL = `
INSERT INTO airline (airline_id, name, iata_code) VALUES
	(1, 'Aurora Air', 'AU'),
	(2, 'Blue Meridian', 'BM');

INSERT INTO passenger_profile (passenger_id, first_name, last_name) VALUES
	(10, 'Ann', 'Lee'),
	(11, 'Bob', 'Stone'),
	(12, 'Cid', 'Moreau');

INSERT INTO flight (flight_id, airline_id, flight_number, departure_time) VALUES
	(100, 1, 'AU100', '2026-01-10T08:00:00Z'),
	(200, 2, 'BM200', '2026-01-12T09:00:00Z');

INSERT INTO ticket (ticket_id, flight_id, passenger_id, class, price) VALUES
	(1, 100, 10, 'economy', 5000.00),
	(2, 200, 11, 'business', 15000.00),
	(3, 100, 10, 'economy', 4999.50),
	(4, 100, 12, 'first', 40000.00),
	(5, 200, 12, 'economy', 3000.00);

INSERT INTO payment (payment_id, ticket_id, amount, status, payment_date) VALUES
	(1, 1, 5000.00, 'completed', '2026-01-05T10:00:00Z'),
	(2, 2, 15000.00, 'completed', '2026-01-20T10:00:00Z'),
	(3, 3, 4999.50, 'completed', '2026-03-01T10:00:00Z'),
	(4, 4, 40000.00, 'completed', '2025-06-01T10:00:00Z'),
	(5, 5, 3000.00, 'refunded', '2026-03-02T10:00:00Z');

INSERT INTO feedback (feedback_id, airline_id, passenger_id, rating, comment, created_at) VALUES
	(1, 1, 10, 5, 'Great crew', '2026-01-01T00:00:00Z'),
	(2, 2, 11, 2, 'Delayed 50% of the time', '2026-02-01T00:00:00Z'),
	(3, 1, 12, 4, 'Good CREW, slow boarding', '2026-03-01T00:00:00Z');
`

func seed(t *testing.T, ctx context.Context, source *Source) {
	t.Helper()
	_, err := source.DB().ExecContext(ctx, seedSQL)
	require.NoError(t, err, "failed to seed fixtures")
}

// findProjectRoot walks up from the working directory to find go.mod
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}
