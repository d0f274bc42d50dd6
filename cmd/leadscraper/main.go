package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"github.com/user/gbp-leads/internal/adapter/chromedp_fetcher"
	"github.com/user/gbp-leads/internal/adapter/http_fetcher"
	"github.com/user/gbp-leads/internal/adapter/smtp_mailer"
	"github.com/user/gbp-leads/internal/extractor"
	"github.com/user/gbp-leads/internal/repository"
	"github.com/user/gbp-leads/internal/usecase"
	"github.com/user/gbp-leads/pkg/config"
	"github.com/user/gbp-leads/pkg/logger"
	"github.com/user/gbp-leads/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the scraper and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := config.Flags()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "could not load config: %v\n", err)
		return 1
	}

	log, err := logger.New(stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "could not build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	log.Info("Starting GBP suspension lead scraper...")

	// Credentials are checked before anything touches the network.
	var mailer repository.ReportMailer
	if !cfg.DryRun {
		m, err := smtp_mailer.NewSMTPMailer(cfg.SMTP, log)
		if err != nil {
			log.Error("Error: mail credentials are not configured", zap.Error(err))
			return 1
		}
		mailer = m
	}

	m := metrics.New()
	opts := []usecase.Option{
		usecase.WithFetcher(newFetcher(cfg, log)),
		usecase.WithExtractor(extractor.New(extractor.Options{
			Origin:       cfg.Source.Origin,
			ThreadPath:   cfg.Source.ThreadPath,
			Keywords:     cfg.Filter.Keywords,
			MaxLeads:     cfg.Filter.MaxLeads,
			SnippetLimit: cfg.Filter.SnippetLimit,
			Parser:       extractor.NewThreadTextParser(cfg.Filter.ChromeMarkers),
		})),
		usecase.WithMetrics(m),
		usecase.WithLogger(log),
		usecase.WithSourceURL(cfg.Source.URL),
	}
	if cfg.DryRun {
		opts = append(opts, usecase.WithDryRun(stdout))
	} else {
		opts = append(opts, usecase.WithMailer(mailer))
	}
	leads := usecase.NewLeadUseCase(opts...)

	if cfg.Schedule != "" {
		return runScheduled(ctx, cfg, leads, m, log)
	}
	return runOnce(ctx, cfg, leads, m, log)
}

func newFetcher(cfg *config.Config, log *zap.Logger) repository.PageFetcher {
	if cfg.Source.Mode == config.SourceModeBrowser {
		return chromedp_fetcher.NewChromedpFetcher(cfg.Source.UserAgent, cfg.Source.Timeout, log)
	}
	return http_fetcher.NewHTTPFetcher(cfg.Source.UserAgent, cfg.Source.Timeout, log)
}

func runOnce(ctx context.Context, cfg *config.Config, leads usecase.LeadFinder, m *metrics.Metrics, log *zap.Logger) int {
	_, err := leads.Run(ctx)
	pushMetrics(cfg, m, log)
	if err != nil {
		log.Error("Scraper failed", zap.Error(err))
		return 1
	}
	log.Info("Scraper completed successfully.")
	return 0
}

func runScheduled(ctx context.Context, cfg *config.Config, leads usecase.LeadFinder, m *metrics.Metrics, log *zap.Logger) int {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.Schedule, func() {
		log.Info("Running scheduled scrape...")
		if _, err := leads.Run(ctx); err != nil {
			log.Error("Scheduled scrape failed", zap.Error(err))
		}
		pushMetrics(cfg, m, log)
	})
	if err != nil {
		log.Error("Could not set up cron job", zap.String("schedule", cfg.Schedule), zap.Error(err))
		return 1
	}

	c.Start()
	log.Info("Scheduler started", zap.String("schedule", cfg.Schedule))
	<-ctx.Done()

	log.Info("Stopping scheduler...")
	<-c.Stop().Done()
	log.Info("Scheduler stopped.")
	return 0
}

func pushMetrics(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		log.Warn("failed to push metrics", zap.String("gateway", cfg.Metrics.PushgatewayURL), zap.Error(err))
	}
}
