package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/frontmark/internal/metastore"
	"github.com/dgallion1/frontmark/internal/notify"
	"github.com/dgallion1/frontmark/internal/parser"
	"github.com/dgallion1/frontmark/internal/schema"
)

// Worker processes a single document job.
type Worker struct {
	store     *metastore.DB
	validator *schema.Validator // nil when no schema is configured
	notifier  *notify.Client
	stats     *JobStats
	log       *slog.Logger

	pdfFallback bool
}

func NewWorker(store *metastore.DB, validator *schema.Validator, notifier *notify.Client, stats *JobStats, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		store:       store,
		validator:   validator,
		notifier:    notifier,
		stats:       stats,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	started := time.Now()
	defer func() {
		w.stats.Record(time.Since(started).Milliseconds())
	}()

	// Phase 1: Parse and extract metadata.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	meta, err := p.Extract(bytes.NewReader(job.fileData), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		w.sendEvent(ctx, job, log)
		return
	}
	job.SetTitle(meta.Title)
	job.SetFields(len(meta.Fields))
	job.ContentHash = ContentHashHex(job.fileData)

	// Phase 1.5: Dedup check against the catalog.
	existingID, err := w.store.FindByHash(ctx, job.ContentHash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if existingID != "" && existingID != job.DocID {
		log.Info("duplicate document, skipping", "existing_doc_id", existingID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Validate metadata against the configured schema.
	if w.validator != nil && meta.Fields != nil {
		job.SetStatus(StatusValidating, "validating")
		msgs, err := w.validator.Validate(meta.Fields)
		if err != nil {
			log.Error("validation failed", "error", err)
			job.AddError(fmt.Sprintf("validate: %s", err))
			job.SetStatus(StatusFailed, "validating")
			w.sendEvent(ctx, job, log)
			return
		}
		if len(msgs) > 0 {
			for _, m := range msgs {
				job.AddError("schema: " + m)
			}
			log.Warn("metadata failed schema validation", "violations", len(msgs))
			job.SetStatus(StatusFailed, "validating")
			w.sendEvent(ctx, job, log)
			return
		}
	}

	// Phase 3: Store the catalog entry.
	job.SetStatus(StatusStoring, "storing")
	err = w.store.SaveDocument(ctx, metastore.Document{
		ID:          job.DocID,
		Filename:    job.Filename,
		Title:       meta.Title,
		Format:      meta.Format,
		ContentHash: job.ContentHash,
		CreatedAt:   job.CreatedAt,
		Fields:      meta.Fields,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		w.sendEvent(ctx, job, log)
		return
	}
	job.SetStored()
	log.Info("metadata stored", "title", meta.Title, "fields", len(meta.Fields))

	// Phase 4: Notify the webhook, retrying transient failures.
	job.SetStatus(StatusCompleted, "done")
	if w.notifier.Enabled() {
		if err := w.notifyWithRetry(ctx, job, log); err != nil {
			log.Error("webhook delivery failed", "error", err)
			job.AddError(fmt.Sprintf("notify: %s", err))
			job.SetStatus(StatusPartial, "done")
		}
	}
}

func (w *Worker) notifyWithRetry(ctx context.Context, job *Job, log *slog.Logger) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.notifier.Send(ctx, eventFor(job))
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable webhook error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// sendEvent delivers a terminal-state event without retries; failures
// on an already-failed job are only logged.
func (w *Worker) sendEvent(ctx context.Context, job *Job, log *slog.Logger) {
	if !w.notifier.Enabled() {
		return
	}
	if err := w.notifier.Send(ctx, eventFor(job)); err != nil {
		log.Warn("webhook delivery failed", "error", err)
	}
}

func eventFor(job *Job) notify.Event {
	snap := job.Snapshot()
	return notify.Event{
		JobID:    snap.ID,
		DocID:    snap.DocID,
		Status:   string(snap.Status),
		Filename: snap.Filename,
		Title:    snap.Title,
		Fields:   snap.Progress.Fields,
		Errors:   snap.Progress.Errors,
	}
}
