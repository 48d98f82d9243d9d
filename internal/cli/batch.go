package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"polemia/internal/model"
	"polemia/internal/pipeline"
)

var (
	concurrency  int
	batchJSON    string
	batchMD      string
	batchTimeout time.Duration
	rps          float64
	burst        int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <claims-file>",
	Short: "Classify multiple claims from a file in parallel",
	Long: `Batch classifies claims concurrently:
- Read claims from the input file (JSON lines or plain text, one per line)
- Fan out over a worker pool with a configurable concurrency limit
- Share one rate budget per external service across all claims
- One claim's failure never aborts its siblings

Example:
  polemia batch claims.jsonl
  polemia batch claims.txt --concurrency 8 --json decisions.json --md decisions.md
  polemia batch claims.jsonl --llm-provider openai --rps 1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchJSON, "json", "decisions.json", "output JSON path")
	batchCmd.Flags().StringVar(&batchMD, "md", "", "output Markdown path (optional)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&rps, "rps", 0, "requests per second per external service (0 = config default)")
	batchCmd.Flags().IntVar(&burst, "burst", 0, "rate limiter burst (0 = config default)")

	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable decision cache")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "semantic layer provider (openai, ollama; empty disables L2)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "semantic layer model name")
	batchCmd.Flags().Float64Var(&tieMargin, "tie-margin", -1, "zero-shot tie margin (overrides config)")
	batchCmd.Flags().StringVar(&undecided, "undecided-label", "", "label when all layers fail (debatable or non-debatable)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if rps > 0 {
		cfg.Concurrency.RequestsPerSecond = rps
	}
	if burst > 0 {
		cfg.Concurrency.Burst = burst
	}

	claims, err := pipeline.ReadClaimsFromFile(file)
	if err != nil {
		return fmt.Errorf("read claims: %w", err)
	}
	if len(claims) == 0 {
		return fmt.Errorf("no claims found in %s", file)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Polemia Batch Classification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Claims:       %d\n", len(claims))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Semantic:     %s\n", providerOrDisabled(cfg.LLM.Provider))
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	decisions := p.ClassifyBatch(ctx, claims)
	elapsed := time.Since(start)

	// Per-claim reporting: each claim's outcome stands on its own
	debatable := 0
	undecidedCount := 0
	invalid := 0
	for _, d := range decisions {
		status := "✓"
		switch d.DecidedBy {
		case model.LayerUndecided:
			status = "✗"
			undecidedCount++
		case model.LayerInvalidInput:
			status = "✗"
			invalid++
		}
		if d.Triggered() {
			debatable++
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "  %s [%d] %s (%s, %.2f)\n", status, d.ClaimID, d.Label, d.DecidedBy, d.Confidence)
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if batchJSON != "" {
		if err := renderer.RenderJSON(decisions, batchJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if batchMD != "" {
		if err := renderer.RenderMarkdown(decisions, batchMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Done in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  Debatable:     %d (evidence retrieval triggered)\n", debatable)
	fmt.Fprintf(os.Stderr, "  Non-debatable: %d\n", len(decisions)-debatable)
	if undecidedCount > 0 {
		fmt.Fprintf(os.Stderr, "  Undecided:     %d (all layers failed; default label applied)\n", undecidedCount)
	}
	if invalid > 0 {
		fmt.Fprintf(os.Stderr, "  Invalid input: %d\n", invalid)
	}
	if batchJSON != "" {
		fmt.Fprintf(os.Stderr, "  ✓ Wrote JSON: %s\n", batchJSON)
	}
	if batchMD != "" {
		fmt.Fprintf(os.Stderr, "  ✓ Wrote Markdown: %s\n", batchMD)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
