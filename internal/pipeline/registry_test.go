package pipeline

import (
	"sync"
	"testing"
)

func TestRunRegistry_SecondBeginFailsFast(t *testing.T) {
	r := NewRunRegistry()

	if err := r.Begin("doc1"); err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	if err := r.Begin("doc1"); err == nil {
		t.Error("second Begin for an in-flight identifier should fail")
	}
	if err := r.Begin("doc2"); err != nil {
		t.Errorf("unrelated identifier should not be blocked: %v", err)
	}

	r.End("doc1")
	if err := r.Begin("doc1"); err != nil {
		t.Errorf("Begin after End failed: %v", err)
	}
}

func TestRunRegistry_EndWithoutBegin(t *testing.T) {
	r := NewRunRegistry()
	r.End("never-begun")
	if r.InFlight("never-begun") {
		t.Error("identifier should not be in flight")
	}
}

func TestRunRegistry_ConcurrentBegins(t *testing.T) {
	r := NewRunRegistry()
	const n = 50
	var wg sync.WaitGroup
	succeeded := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Begin("doc1"); err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	count := 0
	for range succeeded {
		count++
	}
	if count != 1 {
		t.Errorf("%d concurrent Begins succeeded, want exactly 1", count)
	}
}
