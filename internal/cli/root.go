package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polemia/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "polemia",
	Short: "Polemia - debatability gate for factual claims",
	Long: `Polemia decides whether a factual claim is debatable (admits reasonable
disagreement) or non-debatable (settled fact), so that only debatable claims
trigger costly downstream evidence retrieval.

Each claim runs through a four-layer cascade:
  L1  authoritative override   (numeric+year with institutional source)
  L2  semantic reasoning       (LLM judgment, retried on transient failures)
  L3  rule-based fallback      (attribution and modality markers)
  L4  zero-shot fallback       (generic pretrained classifier)

The first layer to decide wins; every decision carries a provenance trace of
the layers attempted.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("polemia v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.polemia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".polemia"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match POLEMIA_*
	viper.SetEnvPrefix("POLEMIA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// applyFileConfig overlays config-file and env settings onto the defaults.
// Flags are applied afterwards by each command, so the hierarchy is
// flags > env > file > defaults.
func applyFileConfig(cfg *model.Config) {
	if viper.IsSet("markers.institutional_sources") {
		cfg.Markers.InstitutionalSources = viper.GetStringSlice("markers.institutional_sources")
	}
	if viper.IsSet("markers.attribution_markers") {
		cfg.Markers.AttributionMarkers = viper.GetStringSlice("markers.attribution_markers")
	}
	if viper.IsSet("markers.modality_markers") {
		cfg.Markers.ModalityMarkers = viper.GetStringSlice("markers.modality_markers")
	}
	if viper.IsSet("rules.attribution_confidence") {
		cfg.Rules.AttributionConfidence = viper.GetFloat64("rules.attribution_confidence")
	}
	if viper.IsSet("rules.modality_confidence") {
		cfg.Rules.ModalityConfidence = viper.GetFloat64("rules.modality_confidence")
	}
	if viper.IsSet("zeroshot.base_url") {
		cfg.ZeroShot.BaseURL = viper.GetString("zeroshot.base_url")
	}
	if viper.IsSet("zeroshot.model") {
		cfg.ZeroShot.Model = viper.GetString("zeroshot.model")
	}
	if viper.IsSet("zeroshot.tie_margin") {
		cfg.ZeroShot.TieMargin = viper.GetFloat64("zeroshot.tie_margin")
	}
	if viper.IsSet("zeroshot.timeout") {
		cfg.ZeroShot.Timeout = viper.GetInt("zeroshot.timeout")
	}
	if viper.IsSet("zeroshot.api_token") {
		cfg.ZeroShot.APIToken = viper.GetString("zeroshot.api_token")
	}
	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetInt("llm.timeout")
	}
	if viper.IsSet("llm.max_retries") {
		cfg.LLM.MaxRetries = viper.GetInt("llm.max_retries")
	}
	if viper.IsSet("llm.default_confidence") {
		cfg.LLM.DefaultConfidence = viper.GetFloat64("llm.default_confidence")
	}
	if viper.IsSet("cascade.undecided_label") {
		cfg.Cascade.UndecidedLabel = model.Label(viper.GetString("cascade.undecided_label"))
	}
	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.requests_per_second") {
		cfg.Concurrency.RequestsPerSecond = viper.GetFloat64("concurrency.requests_per_second")
	}
	if viper.IsSet("concurrency.burst") {
		cfg.Concurrency.Burst = viper.GetInt("concurrency.burst")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.memory_ttl") {
		cfg.Cache.MemoryTTL = viper.GetDuration("cache.memory_ttl")
	}
	if viper.IsSet("cache.disk_ttl") {
		cfg.Cache.DiskTTL = viper.GetDuration("cache.disk_ttl")
	}
	if viper.IsSet("output.verbose") {
		cfg.Output.Verbose = viper.GetBool("output.verbose")
	}
	if viper.IsSet("output.include_footer") {
		cfg.Output.IncludeFooter = viper.GetBool("output.include_footer")
	}
}

// resolveSecrets pulls API credentials from the environment
func resolveSecrets(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if cfg.ZeroShot.APIToken == "" {
		cfg.ZeroShot.APIToken = os.Getenv("HF_API_TOKEN") // optional
	}

	return nil
}

// defaultCacheDir resolves the on-disk decision cache location
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".polemia", "cache")
}
