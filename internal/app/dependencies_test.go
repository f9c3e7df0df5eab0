package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	if deps.orders == nil || deps.products == nil {
		t.Fatal("stores should not be nil for memory storage")
	}
	if len(deps.checkers) != 0 {
		t.Fatalf("memory storage needs no checkers, got %d", len(deps.checkers))
	}
	if err := deps.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestInitRuntimeDependencies_EmptyDriverMeansMemory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{}, log.WithField("test", "default-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(\"\") failed: %v", err)
	}
	if deps.orders == nil {
		t.Fatal("orders store should not be nil")
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}

func TestBuildService_SeedsCatalog(t *testing.T) {
	deps, err := initRuntimeDependencies(context.Background(), Config{}, log.WithField("test", "build-service"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}

	svc, orderCache := buildService(DefaultConfig(), deps, nil)
	seeded, err := svc.EnsureCatalog(context.Background())
	if err != nil {
		t.Fatalf("EnsureCatalog: %v", err)
	}
	if seeded == 0 {
		t.Fatal("expected default catalog to be seeded")
	}
	if err := orderCache.FetchOrders(context.Background(), false); err != nil {
		t.Fatalf("FetchOrders: %v", err)
	}
}
