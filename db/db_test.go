package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	qt "github.com/frankban/quicktest"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startTestStorage spins up a disposable PostgreSQL container and opens a
// migrated Storage against it. The test is skipped when Docker is not
// available.
func startTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("checkout"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("5432/tcp")),
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not get connection string: %v", err)
	}
	storage, err := New(databaseURL)
	if err != nil {
		t.Fatalf("could not create storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestStorageIntegration(t *testing.T) {
	c := qt.New(t)
	storage := startTestStorage(t)

	// No mapping yet.
	_, err := storage.CustomerID("user-1")
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)

	// First mapping.
	c.Assert(storage.SetCustomerMapping("user-1", "cus_first"), qt.IsNil)
	customerID, err := storage.CustomerID("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(customerID, qt.Equals, "cus_first")

	// The partial unique index rejects a second active mapping.
	err = storage.SetCustomerMapping("user-1", "cus_second")
	c.Assert(errors.Is(err, ErrAlreadyExists), qt.IsTrue)

	// Other users are unaffected.
	c.Assert(storage.SetCustomerMapping("user-2", "cus_other"), qt.IsNil)

	// Soft delete hides the mapping from lookups and allows a fresh one.
	c.Assert(storage.DeleteCustomerMapping("user-1"), qt.IsNil)
	_, err = storage.CustomerID("user-1")
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)
	c.Assert(storage.SetCustomerMapping("user-1", "cus_reborn"), qt.IsNil)
	customerID, err = storage.CustomerID("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(customerID, qt.Equals, "cus_reborn")

	// History keeps the soft deleted row.
	mappings, err := storage.CustomerMappings("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(mappings, qt.HasLen, 2)
	c.Assert(mappings[0].CustomerID, qt.Equals, "cus_reborn")
	c.Assert(mappings[0].DeletedAt, qt.IsNil)
	c.Assert(mappings[1].CustomerID, qt.Equals, "cus_first")
	c.Assert(mappings[1].DeletedAt, qt.Not(qt.IsNil))
}
