package pollers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/internal/sched"
	"github.com/akarpov/telescout/internal/storagetest"
)

type fakeRuntime struct {
	mu        sync.Mutex
	list      []ports.ContainerSummary
	listErr   error
	sampleErr error
	sampled   []string
}

func (f *fakeRuntime) ListRunning(context.Context) ([]ports.ContainerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]ports.ContainerSummary(nil), f.list...), nil
}

func (f *fakeRuntime) Sample(_ context.Context, id string) (domain.ContainerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampled = append(f.sampled, id)
	if f.sampleErr != nil {
		return domain.ContainerRecord{}, f.sampleErr
	}
	return domain.ContainerRecord{
		ContainerID:   id,
		ContainerName: "customers",
		MemUsage:      100,
		Time:          time.Now(),
	}, nil
}

func (f *fakeRuntime) sampledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sampled...)
}

func TestContainer_ResolutionFailure_NoTimer(t *testing.T) {
	store := storagetest.New()
	s := sched.New(nil)
	defer s.StopAll()

	rt := &fakeRuntime{list: []ports.ContainerSummary{{ID: "c1", Name: "other"}}}
	p := NewContainer(store, rt, s, nil)

	h, err := p.Start(context.Background(), "worker-a", 10*time.Millisecond)
	if !errors.Is(err, domain.ErrResolution) {
		t.Fatalf("Start() error = %v, want ErrResolution", err)
	}
	if h != nil {
		t.Fatal("Start() returned a handle despite resolution failure")
	}

	time.Sleep(40 * time.Millisecond)
	if got := len(rt.sampledIDs()); got != 0 {
		t.Fatalf("container sampled %d times without resolution", got)
	}
	if got := len(store.ContainerRecords()); got != 0 {
		t.Fatalf("got %d records before resolution, want 0", got)
	}
}

func TestContainer_ListFailure_IsResolutionError(t *testing.T) {
	store := storagetest.New()
	s := sched.New(nil)
	defer s.StopAll()

	rt := &fakeRuntime{listErr: errors.New("daemon unreachable")}
	p := NewContainer(store, rt, s, nil)

	_, err := p.Start(context.Background(), "customers", 10*time.Millisecond)
	if !errors.Is(err, domain.ErrResolution) {
		t.Fatalf("Start() error = %v, want ErrResolution", err)
	}
}

func TestContainer_FirstMatchWins(t *testing.T) {
	store := storagetest.New()
	s := sched.New(nil)
	defer s.StopAll()

	// Two running containers share the configured name. The poller keeps the
	// historical behavior: the first listed entry is selected, silently.
	rt := &fakeRuntime{list: []ports.ContainerSummary{
		{ID: "first", Name: "customers"},
		{ID: "second", Name: "customers"},
	}}
	p := NewContainer(store, rt, s, nil)

	h, err := p.Start(context.Background(), "customers", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	waitFor(t, func() bool { return len(rt.sampledIDs()) >= 1 }, "container never sampled")
	for _, id := range rt.sampledIDs() {
		if id != "first" {
			t.Fatalf("sampled container %q, want the first match %q", id, "first")
		}
	}
}

func TestContainer_OneRecordPerTick(t *testing.T) {
	store := storagetest.New()
	s := sched.New(nil)
	defer s.StopAll()

	rt := &fakeRuntime{list: []ports.ContainerSummary{{ID: "c1", Name: "customers"}}}
	p := NewContainer(store, rt, s, nil)

	h, err := p.Start(context.Background(), "customers", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitFor(t, func() bool { return len(store.ContainerRecords()) >= 3 },
		"expected at least three container records")
	h.Stop()

	recs := store.ContainerRecords()
	if len(recs) != len(rt.sampledIDs()) {
		t.Fatalf("records (%d) != successful samples (%d): more than one record per tick",
			len(recs), len(rt.sampledIDs()))
	}
	for _, rec := range recs {
		if rec.Microservice != "customers" {
			t.Fatalf("record microservice = %q, want %q", rec.Microservice, "customers")
		}
	}
}

func TestContainer_SampleFailureSkipsTick(t *testing.T) {
	store := storagetest.New()
	s := sched.New(nil)
	defer s.StopAll()

	rt := &fakeRuntime{
		list:      []ports.ContainerSummary{{ID: "c1", Name: "customers"}},
		sampleErr: errors.New("stats unavailable"),
	}
	p := NewContainer(store, rt, s, nil)

	h, err := p.Start(context.Background(), "customers", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	// The timer keeps running through failed samples.
	waitFor(t, func() bool { return len(rt.sampledIDs()) >= 3 },
		"timer stopped after sample failures")
	if got := len(store.ContainerRecords()); got != 0 {
		t.Fatalf("got %d records from failing samples, want 0", got)
	}
}
