package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

var (
	reconcileOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nhance_reconcile_operations_total",
		Help: "Journaled blob operations examined by the reconciler, by kind and outcome",
	}, []string{"kind", "outcome"})

	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nhance_reconcile_runs_total",
		Help: "Completed reconciliation passes",
	})
)

// errRecordGone means the content record behind a journal entry no longer exists
var errRecordGone = errors.New("content record no longer exists")

// ReconcilerOptions tunes the reconciliation loop. A zero Interval disables
// the background loop; RunOnce still works. An entry that has failed
// MaxAttempts times is given up as unrecoverable.
type ReconcilerOptions struct {
	Interval    time.Duration
	Grace       time.Duration
	BatchSize   int
	MaxAttempts int
}

// ReconcileReport summarises one pass
type ReconcileReport struct {
	Examined      int `json:"examined" example:"3"`
	Resolved      int `json:"resolved" example:"2"`
	Unrecoverable int `json:"unrecoverable" example:"0"`
	Failed        int `json:"failed" example:"1"`
}

// contentRecords adapts one content repository to what the reconciler needs
type contentRecords interface {
	filePath(ctx context.Context, id uuid.UUID) (string, error)
	setFile(ctx context.Context, id uuid.UUID, ref models.FileRef) error
	remove(ctx context.Context, id uuid.UUID) error
}

type materialRecords struct {
	repo repositories.IMaterialRepository
}

func (m materialRecords) filePath(ctx context.Context, id uuid.UUID) (string, error) {
	material, err := m.repo.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrMaterialNotFound) {
		return "", errRecordGone
	}
	if err != nil {
		return "", err
	}
	return material.FilePath, nil
}

func (m materialRecords) setFile(ctx context.Context, id uuid.UUID, ref models.FileRef) error {
	material, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	material.FilePath, material.FileName, material.FileSize = ref.Path, ref.Name, ref.Size
	return m.repo.Update(ctx, material)
}

func (m materialRecords) remove(ctx context.Context, id uuid.UUID) error {
	if err := m.repo.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrMaterialNotFound) {
		return err
	}
	return nil
}

type referenceRecords struct {
	repo repositories.IReferenceRepository
}

func (r referenceRecords) filePath(ctx context.Context, id uuid.UUID) (string, error) {
	book, err := r.repo.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrReferenceNotFound) {
		return "", errRecordGone
	}
	if err != nil {
		return "", err
	}
	return book.FilePath, nil
}

func (r referenceRecords) setFile(ctx context.Context, id uuid.UUID, ref models.FileRef) error {
	book, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	book.FilePath, book.FileName, book.FileSize = ref.Path, ref.Name, ref.Size
	return r.repo.Update(ctx, book)
}

func (r referenceRecords) remove(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrReferenceNotFound) {
		return err
	}
	return nil
}

// Reconciler repairs replace and delete sequences that stopped part way.
// Entries younger than Grace are left alone so in-flight requests can finish.
type Reconciler struct {
	ops     repositories.IBlobOperationRepository
	records map[models.ContentKind]contentRecords
	blobs   BlobTransfer
	opts    ReconcilerOptions
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closer sync.Once
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	ops repositories.IBlobOperationRepository,
	materialRepo repositories.IMaterialRepository,
	referenceRepo repositories.IReferenceRepository,
	blobs BlobTransfer,
	opts ReconcilerOptions,
	logger zerolog.Logger,
) *Reconciler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Reconciler{
		ops: ops,
		records: map[models.ContentKind]contentRecords{
			models.ContentMaterial:  materialRecords{repo: materialRepo},
			models.ContentReference: referenceRecords{repo: referenceRepo},
		},
		blobs:  blobs,
		opts:   opts,
		logger: logger.With().Str("component", "reconciler").Logger(),
		now:    time.Now,
	}
}

// Start runs reconciliation every Interval until Stop is called or ctx ends
func (r *Reconciler) Start(ctx context.Context) {
	if r.opts.Interval <= 0 {
		r.logger.Info().Msg("Reconcile interval not set, running on demand only")
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			case <-ticker.C:
				if !r.mu.TryLock() {
					r.logger.Debug().Msg("Previous reconcile still running, skipping tick")
					continue
				}
				if _, err := r.run(ctx); err != nil {
					r.logger.Error().Err(err).Msg("Reconcile pass failed")
				}
				r.mu.Unlock()
			}
		}
	}()
	r.logger.Info().Dur("interval", r.opts.Interval).Msg("Reconciler started")
}

// Stop ends the background loop and waits for the current pass
func (r *Reconciler) Stop() {
	if r.stop == nil {
		return
	}
	r.closer.Do(func() { close(r.stop) })
	<-r.done
}

// RunOnce performs one pass, waiting for a running pass to finish first
func (r *Reconciler) RunOnce(ctx context.Context) (*ReconcileReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) (*ReconcileReport, error) {
	pending, err := r.ops.ListPending(ctx, r.now().Add(-r.opts.Grace), r.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("error listing pending blob operations: %w", err)
	}

	report := &ReconcileReport{}
	for _, op := range pending {
		report.Examined++
		status, err := r.reconcile(ctx, op)

		switch {
		case err != nil && op.Attempts+1 >= r.opts.MaxAttempts:
			report.Unrecoverable++
			r.logger.Error().Err(err).Int64("opID", op.ID).Int("attempts", op.Attempts+1).Msg("Giving up on blob operation")
			if uerr := r.ops.UpdateStatus(ctx, op.ID, models.BlobOpUnrecoverable, err.Error(), true); uerr != nil {
				r.logger.Error().Err(uerr).Int64("opID", op.ID).Msg("Failed to update blob operation status")
			}
			reconcileOutcomesTotal.WithLabelValues(string(op.Kind), string(models.BlobOpUnrecoverable)).Inc()
			continue
		case err != nil:
			report.Failed++
			r.logger.Warn().Err(err).Int64("opID", op.ID).Str("kind", string(op.Kind)).Msg("Reconcile attempt failed")
			if uerr := r.ops.UpdateStatus(ctx, op.ID, models.BlobOpFailed, err.Error(), true); uerr != nil {
				r.logger.Error().Err(uerr).Int64("opID", op.ID).Msg("Failed to update blob operation status")
			}
			reconcileOutcomesTotal.WithLabelValues(string(op.Kind), "failed").Inc()
			continue
		case status == models.BlobOpUnrecoverable:
			report.Unrecoverable++
		default:
			report.Resolved++
		}

		if uerr := r.ops.UpdateStatus(ctx, op.ID, status, "", true); uerr != nil {
			r.logger.Error().Err(uerr).Int64("opID", op.ID).Msg("Failed to update blob operation status")
		}
		reconcileOutcomesTotal.WithLabelValues(string(op.Kind), string(status)).Inc()
	}

	reconcileRunsTotal.Inc()
	if report.Examined > 0 {
		r.logger.Info().
			Int("examined", report.Examined).
			Int("resolved", report.Resolved).
			Int("unrecoverable", report.Unrecoverable).
			Int("failed", report.Failed).
			Msg("Reconcile pass finished")
	}
	return report, nil
}

func (r *Reconciler) reconcile(ctx context.Context, op *models.BlobOperation) (models.BlobOpStatus, error) {
	records, ok := r.records[op.Resource]
	if !ok {
		return "", fmt.Errorf("unknown resource %q", op.Resource)
	}
	switch op.Kind {
	case models.BlobOpReplace:
		return r.reconcileReplace(ctx, records, op)
	case models.BlobOpDelete:
		return r.reconcileDelete(ctx, records, op)
	default:
		return "", fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// reconcileReplace finishes a replace whose new blob made it to storage, and
// flags records left pointing at nothing.
func (r *Reconciler) reconcileReplace(ctx context.Context, records contentRecords, op *models.BlobOperation) (models.BlobOpStatus, error) {
	if op.NewPath == nil {
		return "", fmt.Errorf("replace operation %d has no new path", op.ID)
	}
	newPath := *op.NewPath

	current, err := records.filePath(ctx, op.RecordID)
	if errors.Is(err, errRecordGone) {
		r.blobs.Remove(ctx, op.Bucket, newPath)
		return models.BlobOpResolved, nil
	}
	if err != nil {
		return "", err
	}
	if current == newPath {
		return models.BlobOpResolved, nil
	}

	newExists, err := r.blobs.Exists(ctx, op.Bucket, newPath)
	if err != nil {
		return "", err
	}
	if newExists {
		ref := models.FileRef{Path: newPath}
		if op.NewFileName != nil {
			ref.Name = *op.NewFileName
		}
		if op.NewFileSize != nil {
			ref.Size = *op.NewFileSize
		}
		if err := records.setFile(ctx, op.RecordID, ref); err != nil {
			return "", err
		}
		r.logger.Info().Int64("opID", op.ID).Str("recordID", op.RecordID.String()).Str("path", newPath).Msg("Record moved to replacement blob")
		return models.BlobOpResolved, nil
	}

	oldExists, err := r.blobs.Exists(ctx, op.Bucket, current)
	if err != nil {
		return "", err
	}
	if oldExists {
		return models.BlobOpResolved, nil
	}

	r.logger.Error().
		Int64("opID", op.ID).
		Str("resource", string(op.Resource)).
		Str("recordID", op.RecordID.String()).
		Str("path", current).
		Msg("Record points at a missing blob and no replacement was stored")
	return models.BlobOpUnrecoverable, nil
}

// reconcileDelete finishes a delete: the blob goes first, then the record
func (r *Reconciler) reconcileDelete(ctx context.Context, records contentRecords, op *models.BlobOperation) (models.BlobOpStatus, error) {
	r.blobs.Remove(ctx, op.Bucket, op.OldPath)
	if err := records.remove(ctx, op.RecordID); err != nil {
		return "", err
	}
	return models.BlobOpResolved, nil
}
