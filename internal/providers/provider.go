// Package providers implements LLM clients and the shared call plumbing:
// rate limiting, retries, model routing, and structured-output repair.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the primary interface for chat/completion requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// TaskType selects the model tier for a call. High-volume card generation
// runs on the cheap model; chapter-structure mapping and failed-validation
// regeneration run on the strong model. This split is a cost/quality
// tradeoff intrinsic to the pipeline.
type TaskType string

const (
	// TaskCardGen is high-volume card generation (cheap model).
	TaskCardGen TaskType = "card_gen"
	// TaskStructure is chapter-structure mapping (strong model).
	TaskStructure TaskType = "structure"
	// TaskValidate is the per-card quality judgment (cheap model).
	TaskValidate TaskType = "validate"
	// TaskEnhance is failed-validation regeneration (strong model).
	TaskEnhance TaskType = "enhance"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ResponseFormat specifies structured output format.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Timeout     time.Duration

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Parsed if ResponseFormat was set

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`
	TotalTime     time.Duration `json:"total_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// CallRecord is one diagnostic record of an outbound LLM call.
type CallRecord struct {
	Timestamp        time.Time     `json:"timestamp"`
	RequestID        string        `json:"request_id"`
	Task             TaskType      `json:"task"`
	Provider         string        `json:"provider"`
	Model            string        `json:"model"`
	PromptChars      int           `json:"prompt_chars"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Latency          time.Duration `json:"latency_ms"`
	Attempts         int           `json:"attempts"`
	Success          bool          `json:"success"`
	Error            string        `json:"error,omitempty"`
}

// CallRecorder receives diagnostic records for every outbound call.
// Implementations must be safe for concurrent use.
type CallRecorder interface {
	Record(rec CallRecord)
}
