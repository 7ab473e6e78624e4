package session

import (
	"context"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	job, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job.Status = StatusRunning
	job.Stage = StageLayering

	if err := store.Set(ctx, job); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for a stored job")
	}
	if got.Status != StatusRunning || got.Stage != StageLayering {
		t.Errorf("Get returned stale job: %+v", got)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	got, err := store.Get(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing job, got %+v", got)
	}
}

func TestFileStoreExpiredJobIsMiss(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	job, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, job); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired job to be a miss, got %+v", got)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	job, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Set(ctx, job); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after Delete, got %+v", got)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	stale, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	if err := store.Set(ctx, stale); err != nil {
		t.Fatalf("Set stale: %v", err)
	}

	fresh, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Set(ctx, fresh); err != nil {
		t.Fatalf("Set fresh: %v", err)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if got, _ := store.Get(ctx, fresh.ID); got == nil {
		t.Error("Cleanup removed a non-expired job")
	}
}

func TestJobDone(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusSucceeded, true},
		{StatusFailed, true},
	}
	for _, c := range cases {
		j := &Job{Status: c.status}
		if got := j.Done(); got != c.want {
			t.Errorf("Done() for status %s = %v, want %v", c.status, got, c.want)
		}
	}
}
