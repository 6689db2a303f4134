package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/dealhound/internal/intent"
	"github.com/kayz/dealhound/internal/logger"
	"github.com/kayz/dealhound/internal/providers"
	"github.com/kayz/dealhound/internal/sourcing"
)

var (
	searchProviders []string
	searchCountry   string
	searchLanguage  string
	searchMinPrice  float64
	searchMaxPrice  float64
	searchStream    bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run an aggregated product search",
	Long: `Search every configured provider concurrently and print the
merged, deduplicated, relevance-ranked results. With --stream, each
provider's batch is printed the moment that provider finishes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchProviders, "providers", nil,
		"Restrict the search to these provider names")
	searchCmd.Flags().StringVar(&searchCountry, "country", "",
		"Country hint for providers that support one (gl)")
	searchCmd.Flags().StringVar(&searchLanguage, "lang", "",
		"Language hint for providers that support one (hl)")
	searchCmd.Flags().Float64Var(&searchMinPrice, "min-price", 0,
		"Minimum acceptable price in USD")
	searchCmd.Flags().Float64Var(&searchMaxPrice, "max-price", 0,
		"Maximum acceptable price in USD")
	searchCmd.Flags().BoolVar(&searchStream, "stream", false,
		"Print each provider's results as it completes")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false,
		"Print raw JSON instead of formatted output")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	registry, err := providers.Build(cfg.Search)
	if err != nil {
		return err
	}
	if len(registry.IDs()) == 0 {
		return fmt.Errorf("no providers enabled; check %s", configPath)
	}

	q := sourcing.Query{
		Text:      strings.Join(args, " "),
		Country:   searchCountry,
		Language:  searchLanguage,
		Providers: searchProviders,
	}
	if cmd.Flags().Changed("min-price") {
		q.MinPrice = &searchMinPrice
	}
	if cmd.Flags().Changed("max-price") {
		q.MaxPrice = &searchMaxPrice
	}

	ctx := cmd.Context()
	if cfg.Search.Intent.Enabled {
		enrichWithIntent(ctx, &q)
	}

	agg := sourcing.NewAggregator(registry, cfg.ProviderTimeout())

	if searchStream {
		return streamSearch(ctx, agg, q)
	}

	started := time.Now()
	resp, err := agg.Run(ctx, q)
	if err != nil {
		return err
	}

	if searchJSON {
		return printJSON(resp)
	}
	fmt.Print(formatResponse(resp, time.Since(started)))
	return nil
}

// enrichWithIntent asks the LLM for a cleaned-up intent. Failures are
// logged and ignored: the raw query always works on its own.
func enrichWithIntent(ctx context.Context, q *sourcing.Query) {
	log := logger.With("intent")

	ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	extracted, err := intent.NewExtractor(cfg.Search.Intent).Extract(ictx, q.Text)
	if err != nil {
		log.Warn().Err(err).Msg("intent extraction failed, using raw query")
		return
	}

	q.IntentQuery = extracted.ProductName
	if q.MinPrice == nil && extracted.MinPrice != nil {
		q.MinPrice = extracted.MinPrice
	}
	if q.MaxPrice == nil && extracted.MaxPrice != nil {
		q.MaxPrice = extracted.MaxPrice
	}
	log.Debug().Str("product_name", extracted.ProductName).Msg("intent extracted")
}

func streamSearch(ctx context.Context, agg *sourcing.Aggregator, q sourcing.Query) error {
	batches, err := agg.Stream(ctx, q)
	if err != nil {
		return err
	}

	rank := 0
	for batch := range batches {
		if searchJSON {
			if err := printJSON(batch); err != nil {
				return err
			}
			continue
		}

		fmt.Printf("— %s: %s, %d results (%d providers remaining)\n",
			batch.Provider, batch.Outcome.Status, len(batch.Results), batch.Remaining)
		if batch.Outcome.Message != "" {
			fmt.Printf("  %s\n", batch.Outcome.Message)
		}
		for _, r := range batch.Results {
			rank++
			fmt.Print(formatResult(rank, r))
		}
		fmt.Println()
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatResponse(resp *sourcing.Response, elapsed time.Duration) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔍 %d results in %v\n\n", len(resp.Results), elapsed.Round(time.Millisecond)))

	sb.WriteString("📊 Providers:\n")
	for _, o := range resp.Outcomes {
		line := fmt.Sprintf("  - %s: %s, %d results, %dms", o.Provider, o.Status, o.ResultCount, o.LatencyMS)
		if o.Message != "" {
			line += " (" + o.Message + ")"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")

	if resp.Message != "" {
		sb.WriteString("⚠️  " + resp.Message + "\n\n")
	}

	for i, r := range resp.Results {
		sb.WriteString(formatResult(i+1, r))
	}
	return sb.String()
}

func formatResult(rank int, r sourcing.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d. **%s** [%s]\n", rank, r.Title, r.Source))
	if r.Price != nil {
		sb.WriteString(fmt.Sprintf("   💰 $%.2f", *r.Price))
		if r.CurrencyOriginal != "" && r.CurrencyOriginal != "USD" && r.PriceOriginal != nil {
			sb.WriteString(fmt.Sprintf(" (%.2f %s)", *r.PriceOriginal, r.CurrencyOriginal))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("   🏪 %s\n", r.Merchant))
	sb.WriteString(fmt.Sprintf("   🔗 %s\n", r.URL))
	if r.Rating != nil {
		line := fmt.Sprintf("   ⭐ %.1f", *r.Rating)
		if r.Reviews != nil {
			line += fmt.Sprintf(" (%d reviews)", *r.Reviews)
		}
		sb.WriteString(line + "\n")
	}
	if r.Shipping != "" {
		sb.WriteString(fmt.Sprintf("   🚚 %s\n", r.Shipping))
	}
	if len(r.Provenance.MatchedFeatures) > 0 {
		sb.WriteString(fmt.Sprintf("   ✨ %s\n", strings.Join(r.Provenance.MatchedFeatures, ", ")))
	}
	sb.WriteString(fmt.Sprintf("   📈 match %.2f\n\n", r.MatchScore))
	return sb.String()
}
