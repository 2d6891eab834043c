package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"CupSentinel/internal/analyzer"
	"CupSentinel/internal/collector"
	"CupSentinel/internal/config"
	"CupSentinel/internal/notifier"
	"CupSentinel/internal/pattern"
	"CupSentinel/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sender delivers alert messages. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Jobs holds the cron specs (with a seconds field). An empty spec disables the job.
type Jobs struct {
	FetchCron string
	TrimCron  string
	ScanCron  string
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron      *cron.Cron
	collector *collector.Collector
	store     store.PriceStore
	analyzer  *analyzer.Analyzer
	book      *config.SymbolBook
	sender    Sender // nil disables alerts
	loc       *time.Location
	retention time.Duration
	ctx       context.Context
	log       zerolog.Logger
	now       func() time.Time

	mu        sync.Mutex
	detected  map[string]bool // last scan verdict per ticker
	stateFile string          // empty keeps verdicts in memory only
}

// NewScheduler creates a new Scheduler. Cron specs are evaluated in loc.
func NewScheduler(ctx context.Context, col *collector.Collector, st store.PriceStore, an *analyzer.Analyzer,
	book *config.SymbolBook, sender Sender, loc *time.Location, retention time.Duration, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		collector: col,
		store:     st,
		analyzer:  an,
		book:      book,
		sender:    sender,
		loc:       loc,
		retention: retention,
		ctx:       ctx,
		log:       log,
		now:       time.Now,
		detected:  make(map[string]bool),
	}
}

// UseStateFile loads previous scan verdicts from path and persists new ones there.
func (s *Scheduler) UseStateFile(path string) error {
	state, err := LoadState(path)
	if err != nil {
		return fmt.Errorf("load alert state: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detected = state.Detected
	s.stateFile = path
	return nil
}

// RegisterAll registers the fetch, trim and scan jobs.
func (s *Scheduler) RegisterAll(jobs Jobs) error {
	if jobs.FetchCron != "" {
		if _, err := s.cron.AddFunc(jobs.FetchCron, s.fetchTask); err != nil {
			return fmt.Errorf("register fetch task: %w", err)
		}
	}
	if jobs.TrimCron != "" {
		if _, err := s.cron.AddFunc(jobs.TrimCron, s.trimTask); err != nil {
			return fmt.Errorf("register trim task: %w", err)
		}
	}
	if jobs.ScanCron != "" {
		if _, err := s.cron.AddFunc(jobs.ScanCron, s.scanTask); err != nil {
			return fmt.Errorf("register scan task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Str("tz", s.loc.String()).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// IsTradingHours reports whether t falls within 09:30-16:00 (inclusive) on a
// weekday in loc.
func IsTradingHours(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	secs := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return secs >= 9*3600+30*60 && secs <= 16*3600
}

func (s *Scheduler) fetchTask() {
	if _, err := s.FetchNow(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("fetch task failed")
	}
}

// FetchNow collects one round of quotes when the market is open. Outside
// trading hours it stores nothing and returns 0.
func (s *Scheduler) FetchNow(ctx context.Context) (int, error) {
	now := s.now()
	if !IsTradingHours(now, s.loc) {
		s.log.Debug().Time("at", now).Msg("outside market hours, skipping fetch")
		return 0, nil
	}
	return s.collector.Collect(ctx)
}

func (s *Scheduler) trimTask() {
	if _, err := s.TrimNow(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("trim task failed")
	}
}

// TrimNow deletes samples older than the retention window.
func (s *Scheduler) TrimNow(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.Trim(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("trim before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	s.log.Info().Int64("removed", n).Time("before", cutoff).Msg("old samples trimmed")
	return n, nil
}

func (s *Scheduler) scanTask() {
	s.ScanNow(s.ctx)
}

// ScanNow runs detection for every ticker and alerts on patterns that were not
// present on the previous scan. It returns the tickers alerted on.
func (s *Scheduler) ScanNow(ctx context.Context) []string {
	var alerted []string
	changed := false
	for _, ticker := range s.book.Tickers() {
		rep, err := s.analyzer.AnalyzeTicker(ctx, ticker, false)
		if err != nil {
			if errors.Is(err, pattern.ErrInvalidInput) {
				s.log.Debug().Err(err).Str("ticker", ticker).Msg("not enough data to scan")
			} else {
				s.log.Error().Err(err).Str("ticker", ticker).Msg("scan failed")
			}
			continue
		}

		s.mu.Lock()
		was := s.detected[ticker]
		s.detected[ticker] = rep.Result.Detected
		s.mu.Unlock()
		changed = changed || was != rep.Result.Detected

		if !rep.Result.Detected || was {
			continue
		}
		s.log.Info().Str("ticker", ticker).Msg("new cup and handle detected")
		alerted = append(alerted, ticker)
		s.trySend(ctx, notifier.FormatDetectionAlert(rep.Company, rep.Ticker, rep.Result, s.loc))
	}
	if changed {
		s.saveState()
	}
	return alerted
}

func (s *Scheduler) saveState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateFile == "" {
		return
	}
	if err := SaveState(s.stateFile, &AlertState{Detected: s.detected}); err != nil {
		s.log.Error().Err(err).Str("file", s.stateFile).Msg("save alert state failed")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/detect":
		if len(fields) < 2 {
			return "Usage: /detect &lt;company&gt;"
		}
		company := strings.Join(fields[1:], " ")
		rep, err := s.analyzer.Analyze(ctx, company, false)
		switch {
		case errors.Is(err, analyzer.ErrUnknownCompany):
			return fmt.Sprintf("Unknown company %q. Try /symbols.", html.EscapeString(company))
		case errors.Is(err, pattern.ErrInvalidInput):
			return fmt.Sprintf("Not enough data for %s yet.", html.EscapeString(company))
		case err != nil:
			s.log.Error().Err(err).Str("company", company).Msg("detect command failed")
			return "Detection failed, see logs."
		}
		return notifier.FormatDetectionReply(rep.Company, rep.Ticker, rep.Result, s.loc)
	case "/symbols":
		return notifier.FormatSymbols(s.book.Symbols())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.sender == nil {
		return
	}
	if err := s.sender.SendWithRetry(ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
