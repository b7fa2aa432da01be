package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"predictor/database"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const templateDatabase = "predictor_template"

// TestDatabase is a migrated database private to one test
type TestDatabase struct {
	DB   *database.DB
	URL  string
	Name string
}

// cluster is the postgres container shared by every test in the binary.
// The ryuk reaper removes it when the test process exits.
var cluster struct {
	once        sync.Once
	container   *postgres.PostgresContainer
	templateURL string
	err         error
}

var databaseSeq atomic.Int64

// SetupTestDatabase clones the migrated template into a new database for t.
// The clone is dropped with t.Cleanup.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	templateURL, err := startCluster(ctx)
	require.NoError(t, err)

	name := fmt.Sprintf("predictor_test_%d", databaseSeq.Add(1))
	err = adminExec(ctx, templateURL, fmt.Sprintf("CREATE DATABASE %s TEMPLATE %s", pgx.Identifier{name}.Sanitize(), templateDatabase))
	require.NoError(t, err)

	url := database.ConstructDatabaseURL(templateURL, name)
	db, err := database.NewConnection(ctx, url)
	require.NoError(t, err)

	testDB := &TestDatabase{DB: db, URL: url, Name: name}
	t.Cleanup(func() {
		testDB.drop(t, templateURL)
	})

	return testDB
}

// startCluster runs the container once and migrates the template database.
// Nothing may stay connected to the template or CREATE DATABASE ... TEMPLATE fails.
func startCluster(ctx context.Context) (string, error) {
	cluster.once.Do(func() {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase(templateDatabase),
			postgres.WithUsername("test_user"),
			postgres.WithPassword("test_password"),
			postgres.BasicWaitStrategies(),
			testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
				ContainerRequest: testcontainers.ContainerRequest{
					Labels: map[string]string{
						"test":    "predictor-repository",
						"cleanup": "auto",
					},
				},
			}),
		)
		if err != nil {
			cluster.err = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}
		cluster.container = container

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			cluster.err = fmt.Errorf("failed to get connection string: %w", err)
			return
		}

		if err := database.RunMigrationsWithURL(connStr); err != nil {
			cluster.err = err
			return
		}
		cluster.templateURL = connStr
	})

	return cluster.templateURL, cluster.err
}

// adminExec runs a statement from the maintenance database
func adminExec(ctx context.Context, templateURL, sql string) error {
	conn, err := pgx.Connect(ctx, database.ConstructDatabaseURL(templateURL, "postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, sql)
	return err
}

func (td *TestDatabase) drop(t *testing.T, templateURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	td.DB.Close()

	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{td.Name}.Sanitize())
	if err := adminExec(ctx, templateURL, stmt); err != nil {
		t.Logf("Warning: failed to drop test database %s: %v", td.Name, err)
	}
}
