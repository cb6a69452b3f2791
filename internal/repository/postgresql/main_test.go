package postgresql_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

// testDB is shared by every test in the package. It stays nil in -short mode.
var testDB *database.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	log.Println("Setting up PostgreSQL container...")
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("worktime_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("could not get connection string: %v", err)
	}

	if err := database.MigrateUp(connStr); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	testDB, err = database.NewPostgreSQLDB(ctx, connStr, database.PoolConfig{MaxConns: 5, MinConns: 1})
	if err != nil {
		log.Fatalf("could not create connection pool: %v", err)
	}

	code := m.Run()

	testDB.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("could not terminate postgres container: %v", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *database.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("skipping database test in short mode")
	}
	t.Cleanup(func() {
		_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE companies CASCADE")
		if err != nil {
			t.Errorf("failed to truncate tables: %v", err)
		}
	})
	return testDB
}
