package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

// Caller wraps an LLMClient with model routing, rate limiting, retries, and
// call recording. All pipeline generation goes through a Caller; nothing
// talks to an LLMClient directly.
type Caller struct {
	client      LLMClient
	limiter     *RateLimiter
	recorder    CallRecorder
	logger      *slog.Logger
	cheapModel  string
	strongModel string
	maxRetries  int
	retryDelay  time.Duration
}

// CallerConfig configures a Caller.
type CallerConfig struct {
	Client      LLMClient
	Limiter     *RateLimiter
	Recorder    CallRecorder // Optional
	Logger      *slog.Logger // Optional
	CheapModel  string
	StrongModel string
	MaxRetries  int
	RetryDelay  time.Duration
}

// NewCaller creates a new Caller.
func NewCaller(cfg CallerConfig) *Caller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(0)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	return &Caller{
		client:      cfg.Client,
		limiter:     cfg.Limiter,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
		cheapModel:  cfg.CheapModel,
		strongModel: cfg.StrongModel,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}
}

// Limiter exposes the rate limiter for config hot-reload.
func (c *Caller) Limiter() *RateLimiter {
	return c.limiter
}

// ModelFor returns the model serving a task type.
func (c *Caller) ModelFor(task TaskType) string {
	switch task {
	case TaskStructure, TaskEnhance:
		return c.strongModel
	default:
		return c.cheapModel
	}
}

// CompleteOptions tunes a single completion call.
type CompleteOptions struct {
	Task        TaskType
	System      string
	MaxTokens   int
	Temperature float64
}

// Complete sends a single-prompt completion and returns the raw text.
func (c *Caller) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	result, err := c.call(ctx, prompt, opts, nil)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// CompleteJSON sends a completion expected to return JSON, strips formatting
// noise, applies the repair pass, optionally validates against schema, and
// unmarshals into out. Returns an error when no parseable JSON survives; the
// caller treats that unit of work as skipped, never fatal.
func (c *Caller) CompleteJSON(ctx context.Context, prompt string, opts CompleteOptions, schema map[string]any, out any) error {
	var schemaRaw json.RawMessage
	if schema != nil {
		b, err := json.Marshal(schema)
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		schemaRaw = b
	}

	result, err := c.call(ctx, prompt, opts, schemaRaw)
	if err != nil {
		return err
	}

	parsed := result.ParsedJSON
	if parsed == nil {
		parsed, err = ParseStructuredJSON(result.Content)
		if err != nil {
			return fmt.Errorf("unparseable model output: %w", err)
		}
	}

	if schemaRaw != nil {
		if err := ValidateStructuredJSON(schemaRaw, parsed); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(parsed, out); err != nil {
		return fmt.Errorf("failed to decode structured output: %w", err)
	}
	return nil
}

func (c *Caller) call(ctx context.Context, prompt string, opts CompleteOptions, schemaRaw json.RawMessage) (*ChatResult, error) {
	requestID := uuid.New().String()
	model := c.ModelFor(opts.Task)

	messages := make([]Message, 0, 2)
	if opts.System != "" {
		messages = append(messages, Message{Role: "system", Content: opts.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	req := &ChatRequest{
		Messages:    messages,
		Model:       model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		RequestID:   requestID,
	}
	if schemaRaw != nil {
		req.ResponseFormat = &ResponseFormat{Type: "json_schema", JSONSchema: schemaRaw}
	}

	start := time.Now()
	attempts := 0
	var result *ChatResult

	err := retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var callErr error
			result, callErr = c.client.Chat(ctx, req)
			return callErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	rec := CallRecord{
		Timestamp:   start,
		RequestID:   requestID,
		Task:        opts.Task,
		Provider:    c.client.Name(),
		Model:       model,
		PromptChars: len(prompt),
		Latency:     time.Since(start),
		Attempts:    attempts,
		Success:     err == nil,
	}
	if result != nil {
		rec.PromptTokens = result.PromptTokens
		rec.CompletionTokens = result.CompletionTokens
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if c.recorder != nil {
		c.recorder.Record(rec)
	}

	if err != nil {
		c.logger.Warn("LLM call failed",
			"task", opts.Task,
			"model", model,
			"attempts", attempts,
			"error", err)
		return nil, fmt.Errorf("LLM call failed after %d attempts: %w", attempts, err)
	}

	return result, nil
}
