// Package pipeline runs one shift through fetch, aggregation, reconciliation
// and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"backoffice-backend/internal/aggregate"
	"backoffice-backend/internal/cache"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
	"backoffice-backend/internal/reconcile"
	"backoffice-backend/internal/shift"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	LockKey = "shift-processing"

	DefaultPageDelay = 100 * time.Millisecond
	DefaultLockTTL   = 15 * time.Minute
)

type Processor struct {
	source ReceiptSource
	store  Store

	analyzer Analyzer
	cache    SummaryCache
	locker   Locker

	aggregator *aggregate.Aggregator
	engine     *reconcile.Engine
	loc        *time.Location
	pageDelay  time.Duration
	lockTTL    time.Duration
	now        func() time.Time
	newID      func() string
	logger     logrus.FieldLogger

	processing atomic.Bool

	mu      sync.RWMutex
	lastRun *ProcessingResult
}

type Option func(*Processor)

func WithAnalyzer(a Analyzer) Option {
	return func(p *Processor) { p.analyzer = a }
}

func WithCache(c SummaryCache) Option {
	return func(p *Processor) { p.cache = c }
}

func WithLocker(l Locker) Option {
	return func(p *Processor) { p.locker = l }
}

func WithLocation(loc *time.Location) Option {
	return func(p *Processor) { p.loc = loc }
}

func WithPageDelay(d time.Duration) Option {
	return func(p *Processor) { p.pageDelay = d }
}

func WithLockTTL(d time.Duration) Option {
	return func(p *Processor) { p.lockTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(p *Processor) { p.newID = f }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithAggregator(a *aggregate.Aggregator) Option {
	return func(p *Processor) { p.aggregator = a }
}

func WithReconcileEngine(e *reconcile.Engine) Option {
	return func(p *Processor) { p.engine = e }
}

func NewProcessor(source ReceiptSource, store Store, opts ...Option) *Processor {
	p := &Processor{
		source:     source,
		store:      store,
		aggregator: aggregate.New(aggregate.DefaultClassifier()),
		engine:     reconcile.New(reconcile.DefaultTolerance),
		pageDelay:  DefaultPageDelay,
		lockTTL:    DefaultLockTTL,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     config.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loc == nil {
		p.loc, _ = shift.LoadLocation("")
	}
	return p
}

func (p *Processor) Location() *time.Location {
	return p.loc
}

// ProcessShift fetches, aggregates, reconciles and stores the shift that
// opened on date. Only one run may be in flight; a second call returns
// ErrAlreadyProcessing at once. The summary is written only after every page
// was fetched. The returned result is non-nil whenever the run started, so
// callers can report partial progress alongside the error.
func (p *Processor) ProcessShift(ctx context.Context, date time.Time) (*ProcessingResult, error) {
	if !p.processing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyProcessing
	}
	defer p.processing.Store(false)

	if p.locker != nil {
		lock, err := p.locker.Obtain(ctx, LockKey, p.lockTTL)
		if err != nil {
			if errors.Is(err, ErrAlreadyProcessing) {
				return nil, err
			}
			return nil, fmt.Errorf("obtain processing lock: %w", err)
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				config.LogError(p.logger, "pipeline", "ProcessShift", "Release lock", nil, err)
			}
		}()
	}

	window := shift.WindowForDate(date, p.loc)
	started := p.now()
	result := &ProcessingResult{
		RunID:     p.newID(),
		ShiftDate: window.ShiftDate,
		Errors:    []string{},
		Metadata: Metadata{
			Trigger:     TriggerFrom(ctx),
			WindowStart: window.StartUTC,
			WindowEnd:   window.EndUTC,
			StartedAt:   started,
		},
	}
	log := p.logger.WithFields(logrus.Fields{"runId": result.RunID, "shiftDate": window.ShiftDate})
	log.Info("shift processing started")

	err := p.run(ctx, window, result)

	finished := p.now()
	result.Metadata.FinishedAt = finished
	result.Metadata.DurationMs = finished.Sub(started).Milliseconds()

	if recErr := p.store.RecordRun(context.WithoutCancel(ctx), result); recErr != nil {
		config.LogError(p.logger, "pipeline", "ProcessShift", "RecordRun", result.RunID, recErr)
	}
	p.setLastRun(result)

	if err != nil {
		config.LogError(p.logger, "pipeline", "ProcessShift", "run", window.ShiftDate, err)
		return result, err
	}
	log.WithFields(logrus.Fields{
		"receipts": result.ReceiptsProcessed,
		"stored":   result.ReceiptsStored,
		"invalid":  result.InvalidReceipts,
		"errors":   len(result.Errors),
	}).Info("shift processing finished")
	return result, nil
}

func (p *Processor) run(ctx context.Context, window shift.Window, result *ProcessingResult) error {
	raws, err := p.fetchAll(ctx, window, result)
	if err != nil {
		result.addError(err)
		return err
	}
	result.ReceiptsProcessed = len(raws)

	receipts := make([]domain.Receipt, 0, len(raws))
	for _, raw := range raws {
		receipts = append(receipts, raw.Receipt)
		inserted, err := p.store.InsertReceiptIfAbsent(ctx, window.ShiftDate, raw)
		if err != nil {
			result.addError(fmt.Errorf("store receipt %s: %w", raw.Receipt.ReceiptNumber, err))
			continue
		}
		if inserted {
			result.ReceiptsStored++
		}
	}

	summary := p.aggregator.Aggregate(receipts)
	summary.ShiftDate = window.ShiftDate
	summary.WindowStart = window.StartUTC
	summary.WindowEnd = window.EndUTC
	result.InvalidItems = summary.InvalidItems
	result.Summary = summary

	form, err := p.store.FindStaffForm(ctx, window.ShiftDate)
	if err != nil {
		// reconciled as missing rather than failing the run
		result.addError(fmt.Errorf("load staff form: %w", err))
		form = nil
	}
	report := p.engine.Reconcile(summary, form)
	result.Report = report

	if p.analyzer != nil {
		res, err := p.analyzer.Analyze(ctx, summary, report)
		if err != nil {
			result.addError(fmt.Errorf("ai analysis: %w", err))
		} else if res != nil {
			result.Analysis = res
			result.AnalysisGenerated = true
		}
	}

	write := SummaryWrite{RunID: result.RunID, Summary: summary, Report: report, Analysis: result.Analysis}
	if _, err := p.store.UpsertSummary(ctx, write); err != nil {
		perr := &PersistenceError{Op: "upsert shift summary", Err: err}
		result.addError(perr)
		return perr
	}
	result.Persisted = true
	result.Success = true

	if p.cache != nil {
		entry := &cache.Entry{
			Summary:   summary,
			Report:    report,
			Analysis:  result.Analysis,
			LastRunID: result.RunID,
			UpdatedAt: p.now().UTC(),
		}
		if err := p.cache.SetLatest(ctx, entry); err != nil {
			config.LogError(p.logger, "pipeline", "run", "SetLatest", window.ShiftDate, err)
		}
	}
	return nil
}

// fetchAll walks the cursor until the POS reports no further page. Pages are
// requested one at a time with a short pause between them.
func (p *Processor) fetchAll(ctx context.Context, window shift.Window, result *ProcessingResult) ([]loyverse.RawReceipt, error) {
	var out []loyverse.RawReceipt
	seen := map[string]struct{}{}
	cursor := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := p.source.FetchReceipts(ctx, window.StartUTC, window.EndUTC, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &UpstreamFetchError{Page: result.PagesFetched + 1, Err: err}
		}
		result.PagesFetched++

		for _, raw := range page.Receipts {
			if _, dup := seen[raw.Receipt.ID]; dup {
				continue
			}
			seen[raw.Receipt.ID] = struct{}{}
			out = append(out, raw)
		}
		result.InvalidReceipts += len(page.Invalid)
		result.InvalidRecords = append(result.InvalidRecords, page.Invalid...)

		if page.NextCursor == "" || page.NextCursor == cursor {
			return out, nil
		}
		cursor = page.NextCursor

		if err := sleep(ctx, p.pageDelay); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ProcessCurrentShift processes the open shift, or the one that closed most
// recently when the restaurant is shut.
func (p *Processor) ProcessCurrentShift(ctx context.Context) (*ProcessingResult, error) {
	w := shift.WindowContaining(p.now(), p.loc)
	date, err := shift.ParseShiftDate(w.ShiftDate, p.loc)
	if err != nil {
		return nil, err
	}
	return p.ProcessShift(ctx, date)
}

// ProcessLastCompletedShift is the scheduled entry point.
func (p *Processor) ProcessLastCompletedShift(ctx context.Context) (*ProcessingResult, error) {
	dates := shift.RecentDates(p.now(), p.loc, 1)
	return p.ProcessShift(ctx, dates[0])
}

// Backfill reprocesses the last days completed shifts, oldest first. It
// stops early on cancellation or when another run holds the guard.
func (p *Processor) Backfill(ctx context.Context, days int) ([]*ProcessingResult, error) {
	dates := shift.RecentDates(p.now(), p.loc, days)
	results := make([]*ProcessingResult, 0, len(dates))
	var errs []error

	for i := len(dates) - 1; i >= 0; i-- {
		res, err := p.ProcessShift(ctx, dates[i])
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			if errors.Is(err, ErrAlreadyProcessing) || ctx.Err() != nil {
				return results, err
			}
			errs = append(errs, fmt.Errorf("%s: %w", dates[i].Format(shift.DateLayout), err))
		}
		if i > 0 {
			if err := sleep(ctx, p.pageDelay); err != nil {
				return results, err
			}
		}
	}
	return results, errors.Join(errs...)
}

type StatusSnapshot struct {
	IsProcessing bool              `json:"is_processing"`
	LastRun      *ProcessingResult `json:"last_run"`
}

func (p *Processor) Status() StatusSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return StatusSnapshot{IsProcessing: p.processing.Load(), LastRun: p.lastRun}
}

func (p *Processor) setLastRun(r *ProcessingResult) {
	p.mu.Lock()
	p.lastRun = r
	p.mu.Unlock()
}
