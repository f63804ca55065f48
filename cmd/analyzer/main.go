package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Recommender/internal/api/openai"
	"github.com/Alias1177/Recommender/internal/api/twelvedata"
	"github.com/Alias1177/Recommender/internal/cache"
	"github.com/Alias1177/Recommender/internal/config"
	"github.com/Alias1177/Recommender/internal/database"
	"github.com/Alias1177/Recommender/internal/notify"
	"github.com/Alias1177/Recommender/internal/scheduler"
	"github.com/Alias1177/Recommender/internal/service"
	"github.com/Alias1177/Recommender/models"
)

func main() {
	ticker := flag.String("ticker", "", "recommend a single ticker and exit")
	scheduled := flag.Bool("schedule", false, "scan the watchlist on the configured cron schedule")
	flag.Parse()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting Recommender")

	// 3. Print configuration
	printConfig(cfg)

	// 4. Setup API clients
	twClient := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		Interval:       cfg.Interval,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	market := twelvedata.NewMarket(twClient, cfg.MarketSymbol, cfg.CrashPct, cfg.SectorSymbols)
	advisor := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	opts := service.Options{
		Prices:     twClient,
		Advisor:    advisor,
		Market:     market,
		Sectors:    market,
		Thresholds: cfg.Thresholds,
		Profile:    cfg.Profile(),
		Lookback:   cfg.Lookback,
	}

	// 5. Storage and delivery
	cleanup := setupStorage(ctx, cfg, &opts)
	defer cleanup()

	notifier, closeNotifier := setupNotifier(cfg)
	defer closeNotifier()
	if notifier != nil {
		opts.Notifier = notifier
	}

	svc := service.New(opts)
	serveMetrics(cfg.MetricsAddr)

	// 6. Run
	switch {
	case *ticker != "":
		rec, err := svc.Recommend(ctx, strings.ToUpper(*ticker))
		if err != nil {
			log.Fatal().Err(err).Msg("Recommendation failed")
		}
		printRecommendation(rec)
	case *scheduled:
		runScheduled(ctx, svc, cfg)
	default:
		if len(cfg.Tickers) == 0 {
			log.Fatal().Msg("No tickers configured, set TICKERS or pass -ticker")
		}
		for _, r := range svc.Scan(ctx, cfg.Tickers) {
			if r.Err != nil {
				log.Error().Err(r.Err).Str("ticker", r.Ticker).Msg("Recommendation failed")
				continue
			}
			printRecommendation(r.Recommendation)
		}
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("Interval", cfg.Interval).
		Int("Lookback", cfg.Lookback).
		Strs("Tickers", cfg.Tickers).
		Str("MarketSymbol", cfg.MarketSymbol).
		Float64("CrashPct", cfg.CrashPct).
		Str("Style", cfg.Style).
		Str("Period", cfg.Period).
		Str("Tolerance", cfg.Tolerance).
		Str("OpenAIModel", cfg.OpenAIModel).
		Bool("Postgres", cfg.DatabaseURL != "").
		Bool("Redis", cfg.RedisAddr != "").
		Bool("Telegram", cfg.TelegramToken != "").
		Strs("KafkaBrokers", cfg.KafkaBrokers).
		Str("Schedule", cfg.Schedule).
		Msg("Configuration loaded")
}

// setupStorage connects the instrument repository and the surfaced store.
// Redis wins over Postgres for the surfaced store; without either an
// in-process store is used.
func setupStorage(ctx context.Context, cfg *config.Config, opts *service.Options) func() {
	var closers []func() error

	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		closers = append(closers, db.Close)
		opts.Instruments = db
		opts.Store = db
	}

	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		closers = append(closers, store.Close)
		opts.Store = store
	}

	if opts.Store == nil {
		log.Warn().Msg("No persistent store configured, surfaced recommendations are kept in memory")
		opts.Store = cache.NewMemoryStore()
	}

	return func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("Close failed")
			}
		}
	}
}

func setupNotifier(cfg *config.Config) (models.Notifier, func()) {
	var (
		multi  notify.Multi
		closer = func() {}
	)

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram disabled")
		} else {
			multi = append(multi, tg)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		k, err := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error().Err(err).Msg("Kafka disabled")
		} else {
			multi = append(multi, k)
			closer = func() {
				if err := k.Close(); err != nil {
					log.Warn().Err(err).Msg("Kafka writer close failed")
				}
			}
		}
	}

	if len(multi) == 0 {
		return nil, closer
	}
	return multi, closer
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
	}()
}

func runScheduled(ctx context.Context, svc *service.Service, cfg *config.Config) {
	if len(cfg.Tickers) == 0 {
		log.Fatal().Msg("Scheduled mode needs TICKERS")
	}
	s := scheduler.NewScheduler(ctx, svc, cfg.Tickers)
	if err := s.Register(cfg.Schedule); err != nil {
		log.Fatal().Err(err).Msg("Invalid schedule")
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
}

// printRecommendation outputs a final recommendation
func printRecommendation(rec models.FinalRecommendation) {
	fmt.Println("\n===== RECOMMENDATION =====")
	fmt.Println(notify.FormatMessage(rec))

	fmt.Printf("\nComposite: %s (strength %.1f)\n", rec.Composite.Direction, rec.Composite.Strength)
	for _, reason := range rec.Composite.Reasons {
		fmt.Printf("- %s\n", reason)
	}
	fmt.Printf("RSI: %s | SMA25 deviation: %s%% | Weekly: %s%% | Volatility: %s%%\n",
		rec.Indicators.RSI, rec.Indicators.Deviation, rec.Indicators.WeeklyChange, rec.Indicators.Volatility)
}
