package scraper

import (
	"context"
	"sync"
	"testing"
)

func TestRunDueSkipsWhilePaused(t *testing.T) {
	// No store wired: RunDue must bail before touching it when paused.
	o := &Orchestrator{}
	o.Pause()
	if err := o.RunDue(context.Background(), 10); err != nil {
		t.Fatalf("paused run returned error: %v", err)
	}
}

func TestPauseResumeConcurrent(t *testing.T) {
	o := &Orchestrator{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.Pause()
				o.Resume()
			}
		}()
	}
	wg.Wait()
	if o.paused.Load() {
		t.Fatal("expected resumed state after final Resume")
	}
}
