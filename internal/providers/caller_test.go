package providers

import (
	"context"
	"sync"
	"testing"
	"time"
)

type memRecorder struct {
	mu      sync.Mutex
	records []CallRecord
}

func (r *memRecorder) Record(rec CallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func newTestCaller(client LLMClient, rec CallRecorder) *Caller {
	return NewCaller(CallerConfig{
		Client:      client,
		Recorder:    rec,
		CheapModel:  "cheap-model",
		StrongModel: "strong-model",
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	})
}

func TestCaller_ModelRouting(t *testing.T) {
	tests := []struct {
		task TaskType
		want string
	}{
		{TaskCardGen, "cheap-model"},
		{TaskValidate, "cheap-model"},
		{TaskStructure, "strong-model"},
		{TaskEnhance, "strong-model"},
	}

	c := newTestCaller(NewMockClient(), nil)
	for _, tt := range tests {
		if got := c.ModelFor(tt.task); got != tt.want {
			t.Errorf("ModelFor(%s) = %q, want %q", tt.task, got, tt.want)
		}
	}
}

func TestCaller_CompleteRoutesModel(t *testing.T) {
	mock := NewMockClient()
	c := newTestCaller(mock, nil)

	if _, err := c.Complete(context.Background(), "map the chapters", CompleteOptions{Task: TaskStructure}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	if reqs[0].Model != "strong-model" {
		t.Errorf("structure task used model %q, want strong-model", reqs[0].Model)
	}
}

func TestCaller_CompleteJSON(t *testing.T) {
	mock := NewMockClient()
	mock.ResponseText = "```json\n{\"answer\": \"B\"}\n```"
	c := newTestCaller(mock, nil)

	var out struct {
		Answer string `json:"answer"`
	}
	err := c.CompleteJSON(context.Background(), "pick one", CompleteOptions{Task: TaskCardGen}, nil, &out)
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if out.Answer != "B" {
		t.Errorf("answer = %q, want B", out.Answer)
	}
}

func TestCaller_CompleteJSON_UnparseableOutput(t *testing.T) {
	mock := NewMockClient()
	mock.ResponseText = "I cannot produce JSON today."
	c := newTestCaller(mock, nil)

	var out map[string]any
	if err := c.CompleteJSON(context.Background(), "anything", CompleteOptions{Task: TaskCardGen}, nil, &out); err == nil {
		t.Error("expected error for unparseable output")
	}
}

func TestCaller_RecordsCalls(t *testing.T) {
	rec := &memRecorder{}
	mock := NewMockClient()
	c := newTestCaller(mock, rec)

	if _, err := c.Complete(context.Background(), "hello", CompleteOptions{Task: TaskCardGen}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.records) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.records))
	}
	r := rec.records[0]
	if !r.Success || r.Task != TaskCardGen || r.Model != "cheap-model" {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestCaller_RetriesThenFails(t *testing.T) {
	rec := &memRecorder{}
	mock := NewMockClient()
	mock.ShouldFail = true
	c := newTestCaller(mock, rec)

	if _, err := c.Complete(context.Background(), "hello", CompleteOptions{Task: TaskCardGen}); err == nil {
		t.Fatal("expected error from failing client")
	}
	if mock.RequestCount() != 2 {
		t.Errorf("got %d attempts, want 2", mock.RequestCount())
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.records) != 1 || rec.records[0].Success {
		t.Errorf("expected one failed record, got %+v", rec.records)
	}
}

func TestRateLimiter_ConsumeAndRefill(t *testing.T) {
	rl := NewRateLimiter(60) // One token per second

	// Fresh limiter starts with a full bucket.
	consumed := 0
	for rl.TryConsume() {
		consumed++
		if consumed > 60 {
			t.Fatal("consumed more tokens than the limit")
		}
	}
	if consumed == 0 {
		t.Fatal("fresh limiter should have tokens")
	}

	// Bucket is drained now.
	if rl.TryConsume() {
		t.Error("drained limiter should refuse tokens")
	}
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(60)
	for rl.TryConsume() {
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("Wait should fail when context expires before a token is available")
	}
}
