package registrar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akarpov/telescout/internal/storagetest"
)

func TestRegistrar_Register(t *testing.T) {
	store := storagetest.New()
	r := New(store, nil)

	r.Register(context.Background(), "customers", 2*time.Second)

	svcs := store.Services()
	if len(svcs) != 1 {
		t.Fatalf("got %d services, want 1", len(svcs))
	}
	if svcs[0].Microservice != "customers" || svcs[0].Interval != 2000 {
		t.Fatalf("service = %+v, want customers/2000ms", svcs[0])
	}
}

func TestRegistrar_Register_Idempotent(t *testing.T) {
	store := storagetest.New()
	r := New(store, nil)

	r.Register(context.Background(), "customers", 2*time.Second)
	r.Register(context.Background(), "customers", 2*time.Second)

	if got := len(store.Services()); got != 1 {
		t.Fatalf("got %d services after double registration, want 1", got)
	}
}

func TestRegistrar_Register_SwallowsWriteErrors(t *testing.T) {
	store := storagetest.New()
	store.FailWith(errors.New("db down"))
	r := New(store, nil)

	// Must not panic and must not propagate anything.
	r.Register(context.Background(), "customers", 2*time.Second)

	if got := len(store.Services()); got != 0 {
		t.Fatalf("got %d services, want 0", got)
	}
}
