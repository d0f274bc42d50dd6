package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/gbp-leads/internal/entity"
	"github.com/user/gbp-leads/internal/extractor"
	"github.com/user/gbp-leads/internal/report"
	"github.com/user/gbp-leads/internal/repository"
	"github.com/user/gbp-leads/pkg/config"
	"github.com/user/gbp-leads/pkg/metrics"
	"go.uber.org/zap"
)

// Outcome names how a run finished.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeEmpty  Outcome = "empty"
	OutcomeDryRun Outcome = "dry_run"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	Outcome  Outcome
	Matched  int
	Leads    []entity.Lead
	Delivery *repository.Delivery
}

// LeadExtractor turns a listing page into ranked leads.
type LeadExtractor interface {
	Extract(htmlContent string) (*extractor.Result, error)
}

// LeadFinder runs the fetch, extract and report pipeline once.
type LeadFinder interface {
	Run(ctx context.Context) (*RunResult, error)
}

type leadUseCase struct {
	fetcher   repository.PageFetcher
	extractor LeadExtractor
	mailer    repository.ReportMailer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	sourceURL string
	dryRun    bool
	out       io.Writer
	now       func() time.Time
}

type Option func(*leadUseCase)

func WithFetcher(f repository.PageFetcher) Option {
	return func(uc *leadUseCase) { uc.fetcher = f }
}

func WithExtractor(e LeadExtractor) Option {
	return func(uc *leadUseCase) { uc.extractor = e }
}

func WithMailer(m repository.ReportMailer) Option {
	return func(uc *leadUseCase) { uc.mailer = m }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *leadUseCase) { uc.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(uc *leadUseCase) { uc.logger = l }
}

func WithSourceURL(url string) Option {
	return func(uc *leadUseCase) { uc.sourceURL = url }
}

// WithDryRun makes Run write the rendered report to out instead of mailing it.
func WithDryRun(out io.Writer) Option {
	return func(uc *leadUseCase) {
		uc.dryRun = true
		uc.out = out
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *leadUseCase) { uc.now = now }
}

// NewLeadUseCase wires the pipeline. Fetcher, extractor and source URL are
// required; the mailer may be omitted only for dry runs.
func NewLeadUseCase(opts ...Option) LeadFinder {
	uc := &leadUseCase{
		metrics: metrics.New(),
		logger:  zap.NewNop(),
		out:     io.Discard,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run executes every stage exactly once. A run with no matching threads is
// not an error and sends nothing.
func (uc *leadUseCase) Run(ctx context.Context) (result *RunResult, err error) {
	defer func() {
		if err != nil {
			uc.metrics.RunsTotal.WithLabelValues(failureLabel(err)).Inc()
			uc.metrics.LastRunSuccess.Set(0)
			return
		}
		uc.metrics.RunsTotal.WithLabelValues(string(result.Outcome)).Inc()
		uc.metrics.LastRunSuccess.Set(1)
	}()

	if !uc.dryRun && uc.mailer == nil {
		return nil, config.ErrMissingCredentials
	}

	uc.logger.Info("Fetching Google Business support threads...", zap.String("url", uc.sourceURL))
	start := time.Now()
	html, err := uc.fetcher.Fetch(ctx, uc.sourceURL)
	uc.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch threads: %w", err)
	}

	extracted, err := uc.extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("parse threads: %w", err)
	}
	uc.metrics.CandidatesTotal.Add(float64(extracted.Candidates))
	uc.metrics.LeadsTotal.Add(float64(len(extracted.Leads)))

	result = &RunResult{Matched: extracted.Matched, Leads: extracted.Leads}
	uc.logSummary(extracted)

	if len(extracted.Leads) == 0 {
		uc.logger.Info("No suspension-related threads found.")
		result.Outcome = OutcomeEmpty
		return result, nil
	}

	now := uc.now()
	body, err := report.Render(extracted.Leads, now)
	if err != nil {
		return nil, err
	}

	if uc.dryRun {
		if _, err := io.WriteString(uc.out, body); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		uc.logger.Info("Dry run: report written instead of sent", zap.Int("bytes", len(body)))
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	uc.logger.Info("Sending email via SMTP relay...")
	delivery, err := uc.mailer.Send(ctx, report.Subject(now), body)
	if err != nil {
		uc.metrics.MailsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("send report: %w", err)
	}
	uc.metrics.MailsTotal.WithLabelValues("sent").Inc()
	uc.logger.Info("Email sent successfully",
		zap.String("message_id", delivery.MessageID),
		zap.String("recipient", delivery.Recipient),
	)

	result.Outcome = OutcomeSent
	result.Delivery = delivery
	return result, nil
}

func (uc *leadUseCase) logSummary(res *extractor.Result) {
	uc.logger.Info(fmt.Sprintf("Found %d suspension-related threads. Top %d leads:", res.Matched, len(res.Leads)),
		zap.Int("anchors", res.Anchors),
		zap.Int("candidates", res.Candidates),
	)
	for i, lead := range res.Leads {
		uc.logger.Info(fmt.Sprintf("%d. %s (%d replies)", i+1, lead.Title, lead.ReplyCount))
	}
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, config.ErrMissingCredentials):
		return "config_failed"
	case errors.Is(err, repository.ErrFetchFailed), errors.Is(err, repository.ErrBadStatus):
		return "fetch_failed"
	case errors.Is(err, repository.ErrSendFailed):
		return "send_failed"
	default:
		return "failed"
	}
}
