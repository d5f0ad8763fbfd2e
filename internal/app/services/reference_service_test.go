package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

func referenceForm() *dto.ReferenceForm {
	return &dto.ReferenceForm{
		Title:     " Introduction to Algorithms ",
		Author:    " Cormen ",
		Branch:    "CSE",
		Semester:  2,
		SubjectID: "cse-2-3",
	}
}

func TestReplaceReferenceFile_OldBlobNoLongerResolvable(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload("clrs-2nd.pdf", "old"))
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Algorithms", created.Title)
	assert.Equal(t, "Cormen", created.Author)

	before, err := f.references.GetByID(ctx, created.ID)
	require.NoError(t, err)

	// warm the signed URL cache for the old path
	oldURL, err := f.transfer.SignedURL(ctx, testReferenceBucket, before.FilePath)
	require.NoError(t, err)
	require.NotNil(t, oldURL)

	updated, err := f.referenceSvc.UpdateReference(ctx, f.adminID, created.ID, &dto.ReferenceUpdateForm{}, pdfUpload("clrs-3rd.pdf", "new"))
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Algorithms", updated.Title)
	assert.Equal(t, "Cormen", updated.Author)
	assert.Equal(t, "clrs-3rd.pdf", updated.FileName)

	signed, err := f.transfer.SignedURL(ctx, testReferenceBucket, before.FilePath)
	require.NoError(t, err)
	assert.Nil(t, signed)

	after, err := f.references.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.FilePath, after.FilePath)
	assert.Regexp(t, `^CSE/2/cse-2-3/\d+\.pdf$`, after.FilePath)

	download, err := f.referenceSvc.DownloadReference(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, download.URL, after.FilePath)
	assert.Equal(t, "clrs-3rd.pdf", download.FileName)
}

func TestUpdateReference_SuppliedFieldsAreValidated(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload("clrs.pdf", "x"))
	require.NoError(t, err)

	author := "  Cormen, Leiserson "
	updated, err := f.referenceSvc.UpdateReference(ctx, f.adminID, created.ID, &dto.ReferenceUpdateForm{Author: &author}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cormen, Leiserson", updated.Author)
	assert.Equal(t, "Introduction to Algorithms", updated.Title)

	blank := "  "
	_, err = f.referenceSvc.UpdateReference(ctx, f.adminID, created.ID, &dto.ReferenceUpdateForm{Title: &blank}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "title", apperrors.Field(err))
}

func TestCreateReference_Validation(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	form := referenceForm()
	form.Author = ""
	_, err := f.referenceSvc.CreateReference(ctx, f.adminID, form, pdfUpload("a.pdf", "x"))
	assert.Equal(t, "author", apperrors.Field(err))

	pptx := pdfUpload("deck.pptx", "x")
	pptx.ContentType = MimePPTX
	_, err = f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pptx)
	require.Error(t, err)
	assert.Equal(t, "Please upload PDF, DOC, or DOCX files only.", err.Error())

	_, err = f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload(strings.Repeat("r", 256)+".pdf", "x"))
	assert.Equal(t, "file", apperrors.Field(err))

	assert.Zero(t, f.references.calls)
	assert.Empty(t, f.ops.ops)
}

func TestDeleteReference(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload("clrs.pdf", "x"))
	require.NoError(t, err)
	stored, _ := f.references.GetByID(ctx, created.ID)

	err = f.referenceSvc.DeleteReference(ctx, f.studentID, created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.True(t, f.blobExists(t, testReferenceBucket, stored.FilePath))

	require.NoError(t, f.referenceSvc.DeleteReference(ctx, f.adminID, created.ID))
	assert.False(t, f.blobExists(t, testReferenceBucket, stored.FilePath))

	list, err := f.referenceSvc.ListReferences(ctx, models.ContentFilter{Branch: catalog.BranchCSE, Semester: 2, SubjectID: "cse-2-3"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateReference_LongFileNameKeepsStoredFile(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload("clrs.pdf", "x"))
	require.NoError(t, err)
	before, _ := f.references.GetByID(ctx, created.ID)

	_, err = f.referenceSvc.UpdateReference(ctx, f.adminID, created.ID, nil, pdfUpload(strings.Repeat("r", 256)+".pdf", "y"))
	assert.Equal(t, "file", apperrors.Field(err))

	after, _ := f.references.GetByID(ctx, created.ID)
	assert.Equal(t, before, after)
	assert.True(t, f.blobExists(t, testReferenceBucket, after.FilePath))
	assert.Empty(t, f.ops.ops)
}

func TestReferenceMutations_NonAdminChangesNothing(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.referenceSvc.CreateReference(ctx, f.adminID, referenceForm(), pdfUpload("clrs.pdf", "x"))
	require.NoError(t, err)
	before, _ := f.references.GetByID(ctx, created.ID)

	_, err = f.referenceSvc.CreateReference(ctx, f.studentID, referenceForm(), pdfUpload("pirated.pdf", "x"))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	title := "Renamed"
	_, err = f.referenceSvc.UpdateReference(ctx, f.studentID, created.ID, &dto.ReferenceUpdateForm{Title: &title}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	_, err = f.referenceSvc.UpdateReference(ctx, f.studentID, created.ID, nil, pdfUpload("other.pdf", "y"))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	after, _ := f.references.GetByID(ctx, created.ID)
	assert.Equal(t, before, after)
	assert.True(t, f.blobExists(t, testReferenceBucket, after.FilePath))

	list, err := f.referenceSvc.ListReferences(ctx, models.ContentFilter{Branch: catalog.BranchCSE, Semester: 2})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, f.ops.ops)
}
