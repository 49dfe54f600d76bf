package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/dgallion1/docpart/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:  2,
		MaxQueueSize: 4,
		JobTTL:       time.Hour,
		StatsWindow:  time.Hour,
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	orch := NewOrchestrator(testConfig(), discardLogger())
	orch.Start(context.Background())
	defer orch.Stop()

	job := newTestJob("text", "story.txt", []byte("Story Time\n\nThe fox walked into the forest."))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap := orch.GetJob(job.ID).Snapshot()
		if snap.Status == StatusCompleted {
			if snap.ElementCount != 2 {
				t.Errorf("expected 2 elements, got %d", snap.ElementCount)
			}
			if len(snap.Elements) != 2 {
				t.Errorf("expected elements in completed snapshot, got %d", len(snap.Elements))
			}
			break
		}
		if snap.Status == StatusFailed {
			t.Fatalf("job failed: %v", snap.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, status %q", snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if snap := orch.Stats().Snapshot(); snap.Count != 1 {
		t.Errorf("expected 1 recorded run, got %d", snap.Count)
	}
}

func TestOrchestrator_SubmitQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// No Start: nothing drains the queue.
	orch := NewOrchestrator(cfg, discardLogger())

	first := newTestJob("text", "a.txt", []byte("One."))
	if err := orch.Submit(first); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	second := newTestJob("text", "b.txt", []byte("Two."))
	if err := orch.Submit(second); err == nil {
		t.Fatal("expected queue-full error")
	}
	if second.Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", second.Status)
	}
	if orch.GetJob(second.ID) == nil {
		t.Error("expected rejected job to remain inspectable")
	}
}

func TestOrchestrator_QueueDepth(t *testing.T) {
	cfg := testConfig()
	orch := NewOrchestrator(cfg, discardLogger())

	if got := orch.QueueDepth(); got != 0 {
		t.Fatalf("expected empty queue, got %d", got)
	}
	orch.Submit(newTestJob("text", "a.txt", []byte("One.")))
	if got := orch.QueueDepth(); got != 1 {
		t.Fatalf("expected queue depth 1, got %d", got)
	}
}

func TestOrchestrator_StopDrainsWorkers(t *testing.T) {
	orch := NewOrchestrator(testConfig(), discardLogger())
	orch.Start(context.Background())

	job := newTestJob("text", "story.txt", []byte("Quick note."))
	orch.Submit(job)

	done := make(chan struct{})
	go func() {
		orch.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
