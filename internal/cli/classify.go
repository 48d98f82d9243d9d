package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"polemia/internal/model"
	"polemia/internal/pipeline"
)

var (
	outJSON      string
	classTimeout time.Duration
	noCache      bool
	llmProvider  string
	llmModel     string
	tieMargin    float64
	undecided    string
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <claim text>",
	Short: "Classify a single claim as debatable or non-debatable",
	Long: `Classify runs one claim through the full cascade and prints the Decision
with its provenance trace.

Example:
  polemia classify "Critics argue that the new policy could harm small businesses."
  polemia classify --llm-provider openai "AI will replace most human jobs within 20 years."
  polemia classify --json decision.json "India's GDP grew by 7.2% in 2022, according to the Ministry of Finance."`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&outJSON, "json", "", "write Decision JSON to file (default: stdout)")
	classifyCmd.Flags().DurationVar(&classTimeout, "timeout", 2*time.Minute, "overall classification timeout")
	classifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable decision cache")
	classifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "semantic layer provider (openai, ollama; empty disables L2)")
	classifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "semantic layer model name")
	classifyCmd.Flags().Float64Var(&tieMargin, "tie-margin", -1, "zero-shot tie margin (overrides config)")
	classifyCmd.Flags().StringVar(&undecided, "undecided-label", "", "label when all layers fail (debatable or non-debatable)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), classTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	claim := model.Claim{ID: 1, Text: args[0]}

	if verbose {
		fmt.Fprintf(os.Stderr, "Classifying claim: %s\n", claim.Text)
		fmt.Fprintf(os.Stderr, "Semantic layer: %s\n", providerOrDisabled(cfg.LLM.Provider))
		fmt.Fprintln(os.Stderr)
	}

	decision := p.Classify(ctx, claim)

	data, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Decision: %s\n", outJSON)
		}
	} else {
		fmt.Println(string(data))
	}

	if verbose && decision.Triggered() {
		fmt.Fprintln(os.Stderr, "→ debatable: downstream evidence retrieval would be triggered")
	}

	return nil
}

// buildConfig assembles the effective config: defaults, then config file and
// env, then command flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	applyFileConfig(cfg)

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if tieMargin >= 0 {
		cfg.ZeroShot.TieMargin = tieMargin
	}
	if undecided != "" {
		label := model.Label(undecided)
		if !label.Valid() {
			return nil, fmt.Errorf("invalid undecided label: %s", undecided)
		}
		cfg.Cascade.UndecidedLabel = label
	}

	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	// --verbose turns verbosity on; it never turns off a file-configured setting
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if err := resolveSecrets(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func providerOrDisabled(provider string) string {
	if provider == "" {
		return "disabled"
	}
	return provider
}
