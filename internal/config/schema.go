// Package config loads and watches pipeline configuration.
package config

// Config is the root configuration for the extraction pipeline. It is
// threaded explicitly through every component; there is no process-wide
// mutable config.
type Config struct {
	Render      RenderCfg      `mapstructure:"render" yaml:"render"`
	Heuristics  HeuristicsCfg  `mapstructure:"heuristics" yaml:"heuristics"`
	Backend     BackendCfg     `mapstructure:"backend" yaml:"backend"`
	Concurrency ConcurrencyCfg `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheCfg       `mapstructure:"cache" yaml:"cache"`
	Pipeline    PipelineCfg    `mapstructure:"pipeline" yaml:"pipeline"`
}

// RenderCfg configures PDF-to-image rasterization.
type RenderCfg struct {
	DPI         int `mapstructure:"dpi" yaml:"dpi"`                     // Rendering DPI
	MaxLongEdge int `mapstructure:"max_long_edge" yaml:"max_long_edge"` // Cap on long edge in pixels
}

// HeuristicsCfg configures the deterministic selection policy.
type HeuristicsCfg struct {
	// ScoreMargin is the minimum score difference to prefer the higher
	// candidate.
	ScoreMargin float64 `mapstructure:"score_margin" yaml:"score_margin"`
	// AmbiguityBand is the score difference threshold for ambiguity.
	AmbiguityBand float64 `mapstructure:"ambiguity_band" yaml:"ambiguity_band"`
	// AlignWindow is the aligner's forward look-ahead into V.
	AlignWindow int `mapstructure:"align_window" yaml:"align_window"`
	// AlignThreshold is the aligner's 0-100 match threshold.
	AlignThreshold int `mapstructure:"align_threshold" yaml:"align_threshold"`
}

// BackendCfg configures the vision and adjudicator backends.
type BackendCfg struct {
	Provider         string  `mapstructure:"provider" yaml:"provider"` // "openai" or "ollama"
	VisionModel      string  `mapstructure:"vision_model" yaml:"vision_model"`
	AdjudicatorModel string  `mapstructure:"adjudicator_model" yaml:"adjudicator_model"`
	APIKey           string  `mapstructure:"api_key" yaml:"api_key"`   // Supports ${ENV_VAR} syntax
	APIBase          string  `mapstructure:"api_base" yaml:"api_base"` // For Ollama
	TimeoutSeconds   int     `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries       int     `mapstructure:"max_retries" yaml:"max_retries"`
	RateLimit        float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
}

// ConcurrencyCfg configures parallel processing.
type ConcurrencyCfg struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"` // Concurrent page workers
	BatchSize  int `mapstructure:"batch_size" yaml:"batch_size"`   // Concurrent adjudication calls
}

// CacheCfg configures the rendered-page cache.
type CacheCfg struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	ImageCacheDir string `mapstructure:"image_cache_dir" yaml:"image_cache_dir"`
}

// PipelineCfg configures page-level failure policy.
type PipelineCfg struct {
	// SkipFailedPages keeps going when a page fails in a collaborator,
	// noting the gap; when false the whole document aborts.
	SkipFailedPages bool `mapstructure:"skip_failed_pages" yaml:"skip_failed_pages"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderCfg{
			DPI:         250,
			MaxLongEdge: 2400,
		},
		Heuristics: HeuristicsCfg{
			ScoreMargin:    0.15,
			AmbiguityBand:  0.05,
			AlignWindow:    3,
			AlignThreshold: 50,
		},
		Backend: BackendCfg{
			Provider:         "openai",
			VisionModel:      "gpt-4o",
			AdjudicatorModel: "gpt-4o",
			APIKey:           "${OPENAI_API_KEY}",
			TimeoutSeconds:   60,
			MaxRetries:       3,
			RateLimit:        4.0,
		},
		Concurrency: ConcurrencyCfg{
			MaxWorkers: 4,
			BatchSize:  10,
		},
		Cache: CacheCfg{
			Enabled:       true,
			ImageCacheDir: ".cache/images",
		},
		Pipeline: PipelineCfg{
			SkipFailedPages: true,
		},
	}
}
