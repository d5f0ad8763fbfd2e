package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/app/models"
)

func TestReconcile_InterruptedDelete(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.materialSvc.CreateMaterial(ctx, f.adminID, materialForm("Notes"), pdfUpload("v1.pdf", "1"))
	require.NoError(t, err)
	stored, _ := f.materials.GetByID(ctx, created.ID)

	// a delete that was journaled but never ran
	require.NoError(t, f.ops.Create(ctx, &models.BlobOperation{
		Kind:     models.BlobOpDelete,
		Resource: models.ContentMaterial,
		RecordID: created.ID,
		Bucket:   testMaterialBucket,
		OldPath:  stored.FilePath,
	}))

	report, err := f.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)

	_, err = f.materials.GetByID(ctx, created.ID)
	assert.Error(t, err)
	assert.False(t, f.blobExists(t, testMaterialBucket, stored.FilePath))

	op := f.ops.get(1)
	assert.Equal(t, models.BlobOpResolved, op.Status)
	assert.Equal(t, 1, op.Attempts)
}

func TestReconcile_ReplaceOfDeletedRecordDropsNewBlob(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	newPath := "CSE/2/cse-2-3/1700000000000.pdf"
	require.NoError(t, f.transfer.Upload(ctx, testReferenceBucket, newPath, pdfUpload("x.pdf", "x").Reader, 10, MimePDF))

	require.NoError(t, f.ops.Create(ctx, &models.BlobOperation{
		Kind:     models.BlobOpReplace,
		Resource: models.ContentReference,
		RecordID: uuid.New(),
		Bucket:   testReferenceBucket,
		OldPath:  "CSE/2/cse-2-3/1600000000000.pdf",
		NewPath:  &newPath,
	}))

	report, err := f.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.False(t, f.blobExists(t, testReferenceBucket, newPath))
}

func TestReconcile_RespectsGracePeriod(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ops.Create(ctx, &models.BlobOperation{
		Kind:     models.BlobOpDelete,
		Resource: models.ContentMaterial,
		RecordID: uuid.New(),
		Bucket:   testMaterialBucket,
		OldPath:  "CSE/1/cse-1-1/module-1/1.pdf",
	}))

	r := NewReconciler(f.ops, f.materials, f.references, f.transfer, ReconcilerOptions{Grace: 2 * time.Hour}, zerolog.Nop())
	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Examined)
	assert.Equal(t, models.BlobOpPending, f.ops.get(1).Status)
}

func TestReconciler_BackgroundLoop(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ops.Create(ctx, &models.BlobOperation{
		Kind:     models.BlobOpDelete,
		Resource: models.ContentMaterial,
		RecordID: uuid.New(),
		Bucket:   testMaterialBucket,
		OldPath:  "CSE/1/cse-1-1/module-1/1.pdf",
	}))

	r := NewReconciler(f.ops, f.materials, f.references, f.transfer,
		ReconcilerOptions{Interval: 10 * time.Millisecond, Grace: time.Minute}, zerolog.Nop())
	r.Start(ctx)
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return f.ops.get(1).Status == models.BlobOpResolved
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconciler_StopWithoutInterval(t *testing.T) {
	r := NewReconciler(newMemBlobOpRepo(), newMemMaterialRepo(), newMemReferenceRepo(), nil, ReconcilerOptions{}, zerolog.Nop())
	r.Start(context.Background())
	r.Stop()
}

func TestReconcile_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.materialSvc.CreateMaterial(ctx, f.adminID, materialForm("Notes"), pdfUpload("v1.pdf", "one"))
	require.NoError(t, err)

	f.materials.updateErr = errors.New("value too long for type character varying(255)")
	defer func() { f.materials.updateErr = nil }()
	_, err = f.materialSvc.UpdateMaterial(ctx, f.adminID, created.ID, nil, pdfUpload("v2.pdf", "two"))
	require.Error(t, err)

	r := NewReconciler(f.ops, f.materials, f.references, f.transfer, ReconcilerOptions{Grace: time.Minute, MaxAttempts: 2}, zerolog.Nop())

	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, models.BlobOpFailed, f.ops.get(1).Status)

	report, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unrecoverable)
	op := f.ops.get(1)
	assert.Equal(t, models.BlobOpUnrecoverable, op.Status)
	assert.Equal(t, 2, op.Attempts)
	require.NotNil(t, op.LastError)

	report, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Examined)
}

func TestReconcile_RetriedEntriesDoNotStarveNewOnes(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	stuck := &models.BlobOperation{
		Kind:     models.BlobOpReplace,
		Resource: models.ContentMaterial,
		RecordID: uuid.New(),
		Bucket:   testMaterialBucket,
		OldPath:  "CSE/2/cse-2-3/module-1/1.pdf",
	}
	require.NoError(t, f.ops.Create(ctx, stuck))
	require.NoError(t, f.ops.Create(ctx, &models.BlobOperation{
		Kind:     models.BlobOpDelete,
		Resource: models.ContentMaterial,
		RecordID: uuid.New(),
		Bucket:   testMaterialBucket,
		OldPath:  "CSE/2/cse-2-3/module-1/2.pdf",
	}))

	// the replace has no new path and fails on every pass
	r := NewReconciler(f.ops, f.materials, f.references, f.transfer, ReconcilerOptions{Grace: time.Minute, BatchSize: 1}, zerolog.Nop())

	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	report, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, models.BlobOpResolved, f.ops.get(2).Status)
}
