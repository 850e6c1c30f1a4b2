// Package pipeline runs batch ingestion over a range of business days:
// index, classification, documents and articles, in that order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"gazette/internal/articles"
	"gazette/internal/bulletin"
	"gazette/internal/classifier"
	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/models"
	"gazette/internal/normalizer"
	"gazette/internal/store"
)

// ErrInvalidRange is returned when Options.To is before Options.From.
var ErrInvalidRange = errors.New("end date is before start date")

// Source is what the runner needs from the gazette. *bulletin.Fetcher
// implements it.
type Source interface {
	FetchDailyIndex(ctx context.Context, date time.Time) ([]models.BulletinIndexEntry, error)
	FetchDocument(ctx context.Context, id string) (*models.BulletinDocument, error)
}

var _ Source = (*bulletin.Fetcher)(nil)

// Options selects what one run processes.
type Options struct {
	From           time.Time
	To             time.Time
	FetchDocuments bool
	// Refresh downloads cached documents again.
	Refresh bool
}

// Counts tallies upsert outcomes.
type Counts struct {
	Created   int
	Updated   int
	Unchanged int
}

func (c *Counts) add(o store.Outcome) {
	switch o {
	case store.Created:
		c.Created++
	case store.Updated:
		c.Updated++
	case store.Unchanged:
		c.Unchanged++
	}
}

// Total is the number of records written or confirmed.
func (c Counts) Total() int {
	return c.Created + c.Updated + c.Unchanged
}

// Report summarizes one run.
type Report struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	From          time.Time
	To            time.Time
	RunID         string
	FailedDates   []time.Time
	Announcements Counts
	Articles      Counts
	Dates         int
	Entries       int
	Invalid       int
	Documents     int
	Drifted       int
	DroppedBlocks int
	Failures      int
	Cancelled     bool
	// Superseded lists the entries referenced by documents fetched in this
	// run, each with every later document that corrects or amends it.
	Superseded []Supersession

	referenced map[string]bool
}

// Supersession is an entry and the documents that reference it, directly or
// through a chain of references.
type Supersession struct {
	ID string
	By []string
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner ingests business days into a store.Sink.
type Runner struct {
	source        Source
	sink          store.Sink
	classifier    *classifier.Classifier
	extractor     *articles.Extractor
	differ        *normalizer.Differ
	graph         *bulletin.ReferenceGraph
	log           *logger.Logger
	interDate     time.Duration
	interDocument time.Duration
	fetchTimeout  time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
	now           func() time.Time
}

// NewRunner wires a Runner from cfg.
func NewRunner(cfg *config.Config, source Source, sink store.Sink, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}

	attempts := max(cfg.Retry.MaxAttempts, 1)
	fetchTimeout := time.Duration(attempts) * (cfg.Retry.GetTimeout() + time.Duration(cfg.Retry.MaxDelayMs)*time.Millisecond)

	return &Runner{
		source:        source,
		sink:          sink,
		classifier:    classifier.New(classifier.DefaultLeadLines),
		extractor:     articles.NewExtractor(),
		differ:        normalizer.NewDiffer(cfg.Differ.MatchThreshold),
		graph:         bulletin.NewReferenceGraph(),
		log:           log,
		interDate:     cfg.Pacing.InterDate(),
		interDocument: cfg.Pacing.InterDocument(),
		fetchTimeout:  fetchTimeout,
		sleep:         sleepContext,
		now:           time.Now,
	}
}

// Graph returns the reference graph built from every document fetched by
// this runner.
func (r *Runner) Graph() *bulletin.ReferenceGraph {
	return r.graph
}

// Run processes every business day of opts sequentially. Cancellation is
// checked between dates; the date in progress completes. On cancellation
// the partial report is returned with the context error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.To.Before(opts.From) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, opts.From.Format(time.DateOnly), opts.To.Format(time.DateOnly))
	}

	report := &Report{
		RunID:     uuid.NewString(),
		From:      opts.From,
		To:        opts.To,
		StartedAt: r.now(),
	}

	if opts.Refresh {
		ctx = bulletin.WithRefresh(ctx)
	}

	log := r.log.With("run_id", report.RunID)
	log.Info("run started",
		"from", opts.From.Format(time.DateOnly),
		"to", opts.To.Format(time.DateOnly),
		"documents", opts.FetchDocuments)

	for i, date := range bulletin.BusinessDaysBetween(opts.From, opts.To) {
		if i > 0 {
			if err := r.sleep(ctx, r.interDate); err != nil {
				report.Cancelled = true
				break
			}
		}

		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		r.runDate(ctx, log.With("date", date.Format(time.DateOnly)), date, opts, report)
	}

	report.Superseded = r.supersessions(report.referenced)
	report.FinishedAt = r.now()

	log.Info("run finished",
		"dates", report.Dates,
		"entries", report.Entries,
		"failures", report.Failures,
		"failed_dates", len(report.FailedDates),
		"duration", report.Duration())

	if report.Cancelled {
		return report, ctx.Err()
	}

	return report, nil
}

func (r *Runner) runDate(ctx context.Context, log *logger.Logger, date time.Time, opts Options, report *Report) {
	fctx, cancel := r.detached(ctx)
	entries, err := r.source.FetchDailyIndex(fctx, date)
	cancel()

	if err != nil {
		log.Error("daily index failed", "error", err)
		report.FailedDates = append(report.FailedDates, date)

		return
	}

	report.Dates++
	log.Info("daily index fetched", "entries", len(entries))

	for i, entry := range entries {
		if opts.FetchDocuments && i > 0 {
			_ = r.sleep(context.WithoutCancel(ctx), r.interDocument)
		}

		report.Entries++

		if err := classifier.Validate(entry); err != nil {
			report.Invalid++
			log.Warn("invalid index entry skipped", "entry_id", entry.ID, "error", err)

			continue
		}

		if err := r.processEntry(ctx, log.With("entry_id", entry.ID), entry, opts, report); err != nil {
			report.Failures++
			log.Error("entry failed", "entry_id", entry.ID, "error", err)
		}
	}
}

func (r *Runner) processEntry(ctx context.Context, log *logger.Logger, entry models.BulletinIndexEntry, opts Options, report *Report) error {
	ctx = context.WithoutCancel(ctx)

	previous, err := r.sink.FindAnnouncement(ctx, entry.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load announcement: %w", err)
	}

	announcement := r.classifier.Refine(previous, entry, nil)

	var (
		doc      *models.BulletinDocument
		fetchErr error
	)

	if opts.FetchDocuments {
		fctx, cancel := r.detached(ctx)
		doc, fetchErr = r.source.FetchDocument(fctx, entry.ID)
		cancel()

		if fetchErr == nil {
			report.Documents++
			r.graph.Add(doc)
			report.markReferenced(doc)
			announcement = r.classifier.Refine(announcement, entry, doc)
		}
	}

	outcome, err := r.sink.UpsertAnnouncement(ctx, announcement)
	if err != nil {
		return fmt.Errorf("store announcement: %w", err)
	}

	report.Announcements.add(outcome)
	log.Debug("announcement stored", "outcome", outcome, "type", announcement.Type, "score", announcement.RelevanceScore)

	if fetchErr != nil {
		return fetchErr
	}

	if doc == nil || doc.Markup == "" {
		return nil
	}

	return r.storeArticles(ctx, log, doc, report)
}

// storeArticles extracts the articles of doc and upserts those that are new
// or changed. A changed body whose similarity with the stored one falls
// below the differ threshold is counted as drift.
func (r *Runner) storeArticles(ctx context.Context, log *logger.Logger, doc *models.BulletinDocument, report *Report) error {
	result := r.extractor.Extract(doc.ID, doc.Markup)
	report.DroppedBlocks += len(result.Dropped)

	for _, dropped := range result.Dropped {
		log.Debug("block dropped", "block", dropped.BlockID, "header", dropped.Header, "reason", dropped.Reason)
	}

	var errs []error

	for _, article := range result.Articles {
		previous, err := r.sink.FindArticle(ctx, article.DocumentRef, article.Number)

		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			errs = append(errs, fmt.Errorf("load article %s: %w", article.Key(), err))
			continue
		case store.SameArticle(*previous, article):
			report.Articles.add(store.Unchanged)
			continue
		default:
			if cmp := r.differ.Compare(previous.Content, article.Content); !cmp.Match {
				report.Drifted++
				log.Info("article drifted", "article", article.Number.String(), "similarity", cmp.Similarity)
			}
		}

		outcome, err := r.sink.UpsertArticle(ctx, article)
		if err != nil {
			errs = append(errs, fmt.Errorf("store article %s: %w", article.Key(), err))
			continue
		}

		report.Articles.add(outcome)
	}

	return errors.Join(errs...)
}

func (r *Report) markReferenced(doc *models.BulletinDocument) {
	if r.referenced == nil {
		r.referenced = make(map[string]bool)
	}

	for _, ref := range doc.References {
		if ref.ID != "" && ref.ID != doc.ID {
			r.referenced[ref.ID] = true
		}
	}
}

func (r *Runner) supersessions(referenced map[string]bool) []Supersession {
	ids := make([]string, 0, len(referenced))
	for id := range referenced {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	out := make([]Supersession, 0, len(ids))
	for _, id := range ids {
		out = append(out, Supersession{ID: id, By: r.graph.Descendants(id)})
	}

	return out
}

// detached returns a context that survives cancellation of ctx, keeps its
// values and expires after one fetch budget.
func (r *Runner) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
