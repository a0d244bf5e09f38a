package config

// Config holds cardforge configuration.
// Stored at: ~/.cardforge/config.yaml
type Config struct {
	LLM        LLMCfg        `mapstructure:"llm" yaml:"llm"`
	Embeddings EmbeddingsCfg `mapstructure:"embeddings" yaml:"embeddings"`
	Generation GenerationCfg `mapstructure:"generation" yaml:"generation"`
}

// LLMCfg configures the text-generation provider. Two model tiers are
// deliberate: a cheap model for high-volume card generation and a strong
// model for chapter-structure mapping and failed-validation regeneration.
type LLMCfg struct {
	Type        string  `mapstructure:"type" yaml:"type"`   // "openrouter"
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"` // Supports ${ENV_VAR} syntax
	CheapModel  string  `mapstructure:"cheap_model" yaml:"cheap_model"`
	StrongModel string  `mapstructure:"strong_model" yaml:"strong_model"`
	RateLimit   float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per minute
	MaxRetries  int     `mapstructure:"max_retries" yaml:"max_retries"`
}

// EmbeddingsCfg configures the embedding provider.
type EmbeddingsCfg struct {
	Type       string `mapstructure:"type" yaml:"type"` // "openai"
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	Model      string `mapstructure:"model" yaml:"model"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size"`
}

// GenerationCfg tunes the synthesis pipeline.
type GenerationCfg struct {
	ChunkWindowSize      int `mapstructure:"chunk_window_size" yaml:"chunk_window_size"`           // Chunks per flashcard window
	RetrievalTopK        int `mapstructure:"retrieval_top_k" yaml:"retrieval_top_k"`               // Similar chunks added per window
	MaxFlashcardsPerChapter int `mapstructure:"max_flashcards_per_chapter" yaml:"max_flashcards_per_chapter"`
	MaxQuizzesPerChapter int `mapstructure:"max_quizzes_per_chapter" yaml:"max_quizzes_per_chapter"`
	MaxChapters          int `mapstructure:"max_chapters" yaml:"max_chapters"`
	BatchSize            int `mapstructure:"batch_size" yaml:"batch_size"`             // Generation calls in flight
	BatchDelayMS         int `mapstructure:"batch_delay_ms" yaml:"batch_delay_ms"`     // Delay between batches
	Applications         bool `mapstructure:"applications" yaml:"applications"`        // Tier 2 is deferrable
	DebugTierCache       bool `mapstructure:"debug_tier_cache" yaml:"debug_tier_cache"` // Persist raw tier output
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMCfg{
			Type:        "openrouter",
			APIKey:      "${OPENROUTER_API_KEY}",
			CheapModel:  "anthropic/claude-3.5-haiku",
			StrongModel: "anthropic/claude-sonnet-4",
			RateLimit:   150.0,
			MaxRetries:  3,
		},
		Embeddings: EmbeddingsCfg{
			Type:       "openai",
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "text-embedding-3-small",
			Dimensions: 512,
			BatchSize:  16,
		},
		Generation: GenerationCfg{
			ChunkWindowSize:         4,
			RetrievalTopK:           3,
			MaxFlashcardsPerChapter: 25,
			MaxQuizzesPerChapter:    10,
			MaxChapters:             200,
			BatchSize:               3,
			BatchDelayMS:            500,
			Applications:            true,
			DebugTierCache:          false,
		},
	}
}
