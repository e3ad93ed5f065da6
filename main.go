package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pricetracker/config"
	"pricetracker/internal/observability"
	"pricetracker/internal/scraper"
	"pricetracker/internal/sink"
	"pricetracker/logger"
	"pricetracker/services/cache"
	"pricetracker/services/publisher"

	apperrors "pricetracker/pkg/errors"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.MetricsPort != "" {
		observability.Start(cfg.MetricsPort)
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics listener started")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("retailer", cfg.Retailer).
		Dur("rate_limit_delay", cfg.RateLimitDelay).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("Starting application")

	rootCmd := &cobra.Command{
		Use:           "pricetracker",
		Short:         "pricetracker scrapes retailer product pages and records price observations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newCatalogCommand(&cfg), newProductCommand(&cfg))

	// Set up signal handling; the paginator checks the context between pages
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		event := log.Error().Err(err)
		var scrapeErr *apperrors.ScrapeError
		if errors.As(err, &scrapeErr) {
			event = event.
				Str("error_type", string(scrapeErr.Type)).
				Bool("fetch", scrapeErr.IsFetch()).
				Bool("retryable", scrapeErr.IsRetryable())
		}
		event.Msg("Run failed")
		os.Exit(1)
	}
}

// newCatalogCommand scrapes the multi-page product listing
func newCatalogCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Scrape the paginated product listing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			runID := uuid.NewString()

			fetcher := buildFetcher(cfg)
			extractor, err := scraper.NewExtractor(cfg.Retailer, cfg.BaseURL, scraper.DockersListSelectors())
			if err != nil {
				return err
			}

			paginator := scraper.NewPaginator(fetcher, extractor, cfg.CatalogURL(), cfg.MaxPages, cfg.BestEffort)
			result, runErr := paginator.Run(cmd.Context())
			return finishRun(cmd.Context(), cfg, "catalog", runID, started, result, runErr)
		},
	}
}

// newProductCommand scrapes individual product pages
func newProductCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "product [url...]",
		Short: "Scrape individual product pages (arguments override PRODUCT_URLS).",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				urls = cfg.ProductURLs
			}
			if len(urls) == 0 {
				return fmt.Errorf("no product URLs given; pass them as arguments or set PRODUCT_URLS")
			}

			started := time.Now()
			runID := uuid.NewString()

			fetcher := buildFetcher(cfg)
			productScraper, err := scraper.NewProductScraper(cfg.Retailer, cfg.BaseURL, scraper.DockersProductSelectors(), fetcher, cfg.BestEffort)
			if err != nil {
				return err
			}

			result, runErr := productScraper.Run(cmd.Context(), urls)
			return finishRun(cmd.Context(), cfg, "product", runID, started, result, runErr)
		},
	}
}

// buildFetcher wires the fetcher with the optional cooldown cache
func buildFetcher(cfg *config.Config) *scraper.Fetcher {
	var cooldown cache.CooldownCache
	if cfg.MemcacheAddr != "" {
		cooldown = cache.NewMemcacheCooldown(cfg.MemcacheAddr)
		logger.Info("Using Memcache cooldown cache at %s", cfg.MemcacheAddr)
	}
	return scraper.NewFetcher(cfg.Retailer, cfg.RequestTimeout, cfg.RateLimitDelay, cooldown, cfg.CooldownDuration)
}

// finishRun persists the run's records, publishes observations, and reports
// the summary. Aborted runs persist nothing unless best-effort mode kept
// their records; cancelled runs persist what was gathered.
func finishRun(ctx context.Context, cfg *config.Config, mode, runID string, started time.Time, result *scraper.RunResult, runErr error) error {
	log := logger.Default.WithField("run_id", runID)

	summary := scraper.RunSummary{
		RunID:            runID,
		Retailer:         cfg.Retailer,
		Mode:             mode,
		State:            result.State,
		PagesFetched:     result.Pages,
		RecordsExtracted: len(result.Records),
		RecordsSkipped:   result.Skipped,
		Truncated:        result.Truncated,
	}

	persistable := result.State != scraper.RunAborted || cfg.BestEffort
	if persistable {
		// The run context is already cancelled after an interrupt; the
		// persist and publish phase must still complete for the records the
		// run kept
		persistCtx := context.WithoutCancel(ctx)
		persisted, failures, err := persistRecords(persistCtx, cfg, result.Records)
		summary.RecordsPersisted = persisted
		summary.SinkFailures = failures
		if err != nil && runErr == nil {
			runErr = err
		}
		if persisted > 0 {
			publishObservations(persistCtx, cfg, result.Records, log)
		}
	}

	summary.Duration = time.Since(started)
	logSummary(cfg, log, summary, result)

	if runErr != nil {
		return runErr
	}
	if result.State == scraper.RunCancelled {
		return fmt.Errorf("run interrupted after %d pages; partial results persisted", result.Pages)
	}
	return nil
}

// persistRecords runs the configured sinks
func persistRecords(ctx context.Context, cfg *config.Config, records []scraper.ProductRecord) (int, int, error) {
	var sinks []sink.Sink

	if cfg.OutputPath != "" {
		sinks = append(sinks, sink.NewJSONSink(cfg.OutputPath))
	}
	if cfg.DatabaseURL != "" {
		pg, err := sink.NewPostgresSink(ctx, cfg.DatabaseURL, cfg.Retailer)
		if err != nil {
			logger.LogError("sink", err, "Postgres sink unavailable, continuing with remaining sinks")
		} else {
			defer pg.Close()
			if err := pg.EnsureSchema(ctx); err != nil {
				logger.LogError("sink", err, "Failed to ensure schema, skipping postgres sink")
			} else {
				sinks = append(sinks, pg)
			}
		}
	}

	if len(sinks) == 0 {
		return 0, len(records), fmt.Errorf("no usable sinks")
	}

	result, err := sink.NewComposite(sinks...).Persist(ctx, records)
	return result.Persisted, result.Failures, err
}

// publishObservations hands the batch to the alerting collaborator's stream
func publishObservations(ctx context.Context, cfg *config.Config, records []scraper.ProductRecord, log *logger.Logger) {
	if cfg.RedisAddr == "" {
		return
	}

	pub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
	defer pub.Close()

	published := 0
	for _, record := range records {
		if err := pub.PublishObservation(record); err != nil {
			log.Warn().Err(err).Str("sku", record.SKU).Msg("Failed to publish observation")
			continue
		}
		published++
	}
	if err := pub.Trim(); err != nil {
		log.Warn().Err(err).Msg("Failed to trim observation stream")
	}

	log.Info().Int("published", published).Str("stream", cfg.RedisStream).Msg("Observations published")
}

// logSummary reports the run-end counts, plus a sample record outside
// production
func logSummary(cfg *config.Config, log *logger.Logger, summary scraper.RunSummary, result *scraper.RunResult) {
	log.Info().
		Str("mode", summary.Mode).
		Str("state", string(summary.State)).
		Int("pages_fetched", summary.PagesFetched).
		Int("records_extracted", summary.RecordsExtracted).
		Int("records_skipped", summary.RecordsSkipped).
		Int("records_persisted", summary.RecordsPersisted).
		Int("sink_failures", summary.SinkFailures).
		Bool("truncated", summary.Truncated).
		Dur("duration", summary.Duration).
		Msg("Run complete")

	if cfg.Environment != "production" && len(result.Records) > 0 {
		if sample, err := json.Marshal(result.Records[0]); err == nil {
			log.Debug().RawJSON("sample", sample).Msg("First record")
		}
	}
}
