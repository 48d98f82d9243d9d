package model

import "time"

// Config is the complete polemia configuration
type Config struct {
	Markers     MarkerConfig      `yaml:"markers"`
	LLM         LLMConfig         `yaml:"llm"`
	ZeroShot    ZeroShotConfig    `yaml:"zeroshot"`
	Rules       RuleConfig        `yaml:"rules"`
	Cascade     CascadeConfig     `yaml:"cascade"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
}

// MarkerConfig holds the term lists the marker detector matches against.
// All lists are externally tunable; nothing is hardcoded at call sites.
type MarkerConfig struct {
	InstitutionalSources []string `yaml:"institutional_sources"`
	AttributionMarkers   []string `yaml:"attribution_markers"`
	ModalityMarkers      []string `yaml:"modality_markers"`
}

// LLMConfig configures the semantic reasoning layer (L2)
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // openai, ollama, "" (disabled)
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key,omitempty"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	Timeout           int     `yaml:"timeout"`     // seconds, per attempt
	MaxRetries        int     `yaml:"max_retries"` // transient errors only
	DefaultConfidence float64 `yaml:"default_confidence"`
	PromptVersion     string  `yaml:"prompt_version"`
}

// ZeroShotConfig configures the zero-shot fallback layer (L4)
type ZeroShotConfig struct {
	BaseURL   string  `yaml:"base_url"`
	Model     string  `yaml:"model"`
	APIToken  string  `yaml:"api_token,omitempty"`
	Timeout   int     `yaml:"timeout"`    // seconds
	TieMargin float64 `yaml:"tie_margin"` // below this score gap, abstain instead of guessing
}

// RuleConfig holds the tunable confidences of the rule-based layer (L3)
type RuleConfig struct {
	AttributionConfidence float64 `yaml:"attribution_confidence"`
	ModalityConfidence    float64 `yaml:"modality_confidence"`
}

// CascadeConfig holds orchestrator-level policy
type CascadeConfig struct {
	// UndecidedLabel is assigned when all four layers fail or defer.
	// Defaulting to non-debatable avoids retrieval calls on total cascade
	// failure; flip to debatable to never silently drop a contested claim.
	UndecidedLabel Label `yaml:"undecided_label"`
}

// ConcurrencyConfig bounds batch fan-out and the shared service budgets
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // shared across claims, per service
	Burst             int     `yaml:"burst"`
}

// CacheConfig configures decision memoization
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// OutputConfig controls rendering and verbosity
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Markers: MarkerConfig{
			InstitutionalSources: []string{
				"official data",
				"government data",
				"according to official",
				"according to government",
				"world bank",
				"imf",
				"un report",
				"census",
				"statistics bureau",
				"ministry of",
				"department of",
				"federal reserve",
				"peer-reviewed",
				"published in the journal",
			},
			AttributionMarkers: []string{
				"argue", "argues", "argued",
				"claim", "claims",
				"believe", "believes",
				"warn", "warns", "warned",
				"critic", "critics",
				"supporter", "supporters",
				"experts say",
				"scientists say",
				"economists say",
				"analysts say",
			},
			ModalityMarkers: []string{
				"could", "may", "might", "likely", "unlikely",
				"potential", "risk", "threat",
				"expected to", "projected to",
				"forecast", "estimate",
				"continues to",
				"will replace", "will likely",
			},
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default
			Model:             "",
			Timeout:           20,
			MaxRetries:        1,
			DefaultConfidence: 0.7,
			PromptVersion:     "v1",
		},
		ZeroShot: ZeroShotConfig{
			BaseURL:   "https://api-inference.huggingface.co",
			Model:     "typeform/distilbert-base-uncased-mnli",
			Timeout:   20,
			TieMargin: 0.05,
		},
		Rules: RuleConfig{
			AttributionConfidence: 0.6,
			ModalityConfidence:    0.55,
		},
		Cascade: CascadeConfig{
			UndecidedLabel: LabelNonDebatable,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.polemia/cache at startup
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
