package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/internal/events"
	"github.com/kubev2v/transfer-agent/internal/models"
	"github.com/kubev2v/transfer-agent/internal/store"
	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
	"github.com/kubev2v/transfer-agent/pkg/job"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

type RetryConfig struct {
	MaxRetries    uint
	RetryInterval time.Duration
}

type transfer struct {
	model  models.Transfer
	runner *job.Runner
	// final is set once the runner completed, guarded by TransferService.mu
	final *models.Transfer
}

// TransferService pulls forms from an ODK Collect directory into the
// briefcase storage, one job per form.
type TransferService struct {
	store      *store.Store
	publisher  events.Publisher
	scheduler  *scheduler.Scheduler
	storageDir string
	retry      RetryConfig

	mu        sync.Mutex
	transfers map[string]*transfer
	// starting maps a source to the transfer being started for it
	starting map[string]string
}

func NewTransferService(st *store.Store, pub events.Publisher, s *scheduler.Scheduler, storageDir string, retry RetryConfig) *TransferService {
	return &TransferService{
		store:      st,
		publisher:  pub,
		scheduler:  s,
		storageDir: storageDir,
		retry:      retry,
		transfers:  make(map[string]*transfer),
		starting:   make(map[string]string),
	}
}

// Import starts pulling the forms of source and returns the transfer id.
// With formID set only that form is pulled.
func (t *TransferService) Import(ctx context.Context, source, formID string) (string, error) {
	t.mu.Lock()
	err := t.checkSource(source)
	t.mu.Unlock()
	if err != nil {
		return "", err
	}

	forms, err := DiscoverForms(source, formID)
	if err != nil {
		return "", err
	}
	if formID != "" && len(forms) == 0 {
		return "", srvErrors.NewFormNotFoundError(formID)
	}

	model := models.Transfer{
		ID:        uuid.NewString(),
		Source:    source,
		FormID:    formID,
		State:     models.TransferStateRunning,
		Total:     len(forms),
		StartedAt: time.Now().UTC(),
	}

	// checked again: another import of source may have started during discovery
	if err := t.reserve(source, model.ID); err != nil {
		return "", err
	}
	defer t.unreserve(source)

	if err := t.store.Transfers().Create(ctx, model); err != nil {
		return "", fmt.Errorf("failed to create transfer: %w", err)
	}

	zap.S().Named("transfer_service").Infow("starting import", "transfer", model.ID, "source", source, "forms", len(forms))

	jobs := func(yield func(job.Job[job.Void]) bool) {
		for _, f := range forms {
			if !yield(t.pullJob(model.ID, source, f)) {
				return
			}
		}
	}

	tr := &transfer{model: model}
	tr.runner = job.LaunchAsyncAll(jobs, job.WithScheduler(t.scheduler))

	t.mu.Lock()
	t.transfers[model.ID] = tr
	t.mu.Unlock()

	// registered without the lock: a batch already complete runs it right here
	tr.runner.OnComplete(func() { t.complete(tr) })

	return model.ID, nil
}

// reserve marks source as being imported by id. It fails while a transfer of
// source runs or is being started.
func (t *TransferService) reserve(source, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkSource(source); err != nil {
		return err
	}
	t.starting[source] = id
	return nil
}

// checkSource must be called with t.mu held.
func (t *TransferService) checkSource(source string) error {
	if other, ok := t.starting[source]; ok {
		return srvErrors.NewTransferInProgressError(source, other)
	}
	for _, tr := range t.transfers {
		if tr.model.Source == source && !tr.runner.IsComplete() {
			return srvErrors.NewTransferInProgressError(source, tr.model.ID)
		}
	}
	return nil
}

func (t *TransferService) unreserve(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.starting, source)
}

// Wait blocks until the transfer id completes and returns its final state.
func (t *TransferService) Wait(ctx context.Context, id string) (*models.Transfer, error) {
	tr, err := t.get(id)
	if err != nil {
		// completed transfers are only kept in the store
		return t.store.Transfers().Get(ctx, id)
	}
	if err := tr.runner.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Status(ctx, id)
}

// Cancel asks the jobs of the transfer to stop. Cancelling a completed
// transfer does nothing.
func (t *TransferService) Cancel(id string) error {
	tr, err := t.get(id)
	if err != nil {
		_, err := t.store.Transfers().Get(context.Background(), id)
		return err
	}
	zap.S().Named("transfer_service").Infow("cancelling import", "transfer", id)
	tr.runner.Cancel()
	return nil
}

// Status returns the live state of a transfer started by this service, or
// the stored one for older transfers.
func (t *TransferService) Status(ctx context.Context, id string) (*models.Transfer, error) {
	t.mu.Lock()
	tr, ok := t.transfers[id]
	var m models.Transfer
	if ok {
		if tr.final != nil {
			m = *tr.final
		} else {
			m = snapshot(tr)
		}
	}
	t.mu.Unlock()

	if !ok {
		return t.store.Transfers().Get(ctx, id)
	}
	return &m, nil
}

// List returns the most recent transfers.
func (t *TransferService) List(ctx context.Context, limit uint64) ([]models.Transfer, error) {
	return t.store.Transfers().List(ctx, limit)
}

// Forms returns a page of the pulled forms, optionally restricted to one
// source, together with the number of forms matching the filter.
func (t *TransferService) Forms(ctx context.Context, source string, limit, offset uint64) ([]models.FormMetadata, int, error) {
	total, err := t.store.Forms().Count(ctx, store.BySource(source))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	forms, err := t.store.Forms().List(ctx, store.BySource(source), store.WithLimit(limit), store.WithOffset(offset))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}

	return forms, total, nil
}

func (t *TransferService) get(id string) (*transfer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.transfers[id]
	if !ok {
		return nil, srvErrors.NewTransferNotFoundError(id)
	}
	return tr, nil
}

// pullJob copies one form, then publishes the outcome and records the
// metadata of the pulled form.
func (t *TransferService) pullJob(transferID, source string, f models.Form) job.Job[job.Void] {
	type pull struct {
		copyResult
		err error
	}

	return job.Supply(func(rs *job.RunnerStatus) (pull, error) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-rs.Done():
				cancel()
			case <-ctx.Done():
			}
		}()

		dst := formStorageDir(t.storageDir, f.ID)
		res, err := backoff.Retry(ctx, func() (copyResult, error) {
			return copyForm(ctx, rs, f, dst)
		}, t.retryOptions()...)
		if errors.Is(err, context.Canceled) {
			return pull{copyResult: copyResult{Cancelled: true}}, nil
		}
		return pull{copyResult: res, err: err}, nil
	}).ThenAccept(func(rs *job.RunnerStatus, p pull) error {
		if p.err != nil {
			zap.S().Named("transfer_service").Errorw("failed to pull form", "transfer", transferID, "form", f.ID, "error", p.err)
			t.publisher.Publish(models.NewPullFailureEvent(transferID, f.ID, p.err))
			return fmt.Errorf("failed to pull form %s: %w", f.ID, p.err)
		}
		if p.Cancelled {
			zap.S().Named("transfer_service").Debugw("form pull cancelled", "transfer", transferID, "form", f.ID, "files", p.Files)
			return nil
		}

		err := t.store.Forms().Upsert(context.Background(), models.FormMetadata{
			ID:           f.ID,
			Name:         f.Name,
			Source:       source,
			Files:        p.Files,
			Bytes:        p.Bytes,
			LastPulledAt: time.Now().UTC(),
		})
		if err != nil {
			t.publisher.Publish(models.NewPullFailureEvent(transferID, f.ID, err))
			return fmt.Errorf("failed to update metadata of form %s: %w", f.ID, err)
		}

		zap.S().Named("transfer_service").Infow("form pulled", "transfer", transferID, "form", f.ID, "files", p.Files, "bytes", p.Bytes)
		t.publisher.Publish(models.NewPullSuccessEvent(transferID, f.ID))
		return nil
	})
}

func (t *TransferService) retryOptions() []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	if t.retry.RetryInterval > 0 {
		b.InitialInterval = t.retry.RetryInterval
	}
	return []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(t.retry.MaxRetries + 1),
	}
}

func (t *TransferService) complete(tr *transfer) {
	t.mu.Lock()
	m := snapshot(tr)
	now := time.Now().UTC()
	m.CompletedAt = &now
	tr.final = &m
	t.mu.Unlock()

	if err := t.store.Transfers().Complete(context.Background(), m); err != nil {
		// kept in memory so Status still reports the outcome
		zap.S().Named("transfer_service").Errorw("failed to record transfer", "transfer", m.ID, "error", err)
	} else {
		t.mu.Lock()
		delete(t.transfers, m.ID)
		t.mu.Unlock()
	}

	zap.S().Named("transfer_service").Infow("import complete", "transfer", m.ID, "state", m.State, "succeeded", m.Succeeded, "failed", m.Failed)
	t.publisher.Publish(models.NewPullCompleteEvent(m.ID))
}

func snapshot(tr *transfer) models.Transfer {
	m := tr.model
	stats := tr.runner.Stats()
	m.Succeeded = stats.Succeeded
	m.Failed = stats.Failed
	for _, err := range tr.runner.Errors() {
		m.Errors = append(m.Errors, err.Error())
	}

	complete := tr.runner.IsComplete()
	switch {
	case complete && tr.runner.IsCancelled():
		m.State = models.TransferStateCanceled
	case complete:
		m.State = models.TransferStateCompleted
	case tr.runner.IsCancelled():
		m.State = models.TransferStateCanceling
	default:
		m.State = models.TransferStateRunning
	}
	return m
}
