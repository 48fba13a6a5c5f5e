package repository

import (
	"context"
	"os"
	"testing"
)

const testDatabaseURLEnv = "COURTSTATS_TEST_DATABASE_URL"

// newPostgres opens the database named by COURTSTATS_TEST_DATABASE_URL and
// empties it. The test is skipped when the variable is unset.
func newPostgres(t *testing.T, opts ...Option) Store {
	t.Helper()
	dsn := os.Getenv(testDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn, opts...)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `TRUNCATE events, players, games, teams RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv(testDatabaseURLEnv) == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}
	testStoreContract(t, "postgres", newPostgres)
}
