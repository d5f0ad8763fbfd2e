package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/dberrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

// ReferenceRepository handles the 'reference_books' table
type ReferenceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReferenceRepository) selectBuilder() squirrel.SelectBuilder {
	return r.sb.Select(
		"id", "title", "author", "branch", "semester", "subject_id", "subject_name",
		"file_path", "file_name", "file_size", "COALESCE(uploaded_by, 0)", "created_at", "updated_at",
	).From("reference_books")
}

func scanReferenceBook(row pgx.Row) (*models.ReferenceBook, error) {
	var b models.ReferenceBook
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Branch, &b.Semester, &b.SubjectID, &b.SubjectName,
		&b.FilePath, &b.FileName, &b.FileSize, &b.UploadedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrReferenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a reference book, assigning an ID when none is set
func (r *ReferenceRepository) Create(ctx context.Context, book *models.ReferenceBook) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	var uploadedBy *int64
	if book.UploadedBy != 0 {
		uploadedBy = &book.UploadedBy
	}

	sql, args, err := r.sb.Insert("reference_books").
		Columns("id", "title", "author", "branch", "semester", "subject_id", "subject_name",
			"file_path", "file_name", "file_size", "uploaded_by").
		Values(book.ID, book.Title, book.Author, book.Branch, book.Semester, book.SubjectID, book.SubjectName,
			book.FilePath, book.FileName, book.FileSize, uploadedBy).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reference query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&book.CreatedAt, &book.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case dberrors.IsCheckViolation(err):
		return apperrors.NewBadRequestError("reference book violates a table constraint")
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrUserNotFound
	default:
		logger.Error().Err(err).Str("subjectID", book.SubjectID).Msg("Error creating reference book")
		return fmt.Errorf("error creating reference book: %w", err)
	}
}

// GetByID retrieves a reference book by ID
func (r *ReferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReferenceBook, error) {
	sql, args, err := r.selectBuilder().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reference query: %w", err)
	}

	book, err := scanReferenceBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrReferenceNotFound) {
		logger.Error().Err(err).Str("referenceID", id.String()).Msg("Error retrieving reference book")
		return nil, fmt.Errorf("error retrieving reference book: %w", err)
	}
	return book, err
}

// List returns the reference books of a subject, newest first. ModuleID is ignored.
func (r *ReferenceRepository) List(ctx context.Context, filter models.ContentFilter) ([]*models.ReferenceBook, error) {
	qb := r.selectBuilder().
		Where(squirrel.Eq{"branch": filter.Branch, "semester": filter.Semester})
	if filter.SubjectID != "" {
		qb = qb.Where(squirrel.Eq{"subject_id": filter.SubjectID})
	}

	sql, args, err := qb.OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list references query: %w", err)
	}
	return r.collect(ctx, sql, args...)
}

// ListPage returns one page of all reference books and the total count
func (r *ReferenceRepository) ListPage(ctx context.Context, offset uint64, limit int) ([]*models.ReferenceBook, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM reference_books").Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting reference books")
		return nil, 0, fmt.Errorf("error counting reference books: %w", err)
	}
	if total == 0 {
		return []*models.ReferenceBook{}, 0, nil
	}

	sql, args, err := r.selectBuilder().
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list references query: %w", err)
	}

	books, err := r.collect(ctx, sql, args...)
	return books, total, err
}

func (r *ReferenceRepository) collect(ctx context.Context, sql string, args ...interface{}) ([]*models.ReferenceBook, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying reference books")
		return nil, fmt.Errorf("error querying reference books: %w", err)
	}
	defer rows.Close()

	books := make([]*models.ReferenceBook, 0)
	for rows.Next() {
		book, err := scanReferenceBook(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reference book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// Update writes title, author and file reference
func (r *ReferenceRepository) Update(ctx context.Context, book *models.ReferenceBook) error {
	book.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("reference_books").
		SetMap(map[string]interface{}{
			"title":      book.Title,
			"author":     book.Author,
			"file_path":  book.FilePath,
			"file_name":  book.FileName,
			"file_size":  book.FileSize,
			"updated_at": book.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": book.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update reference query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("referenceID", book.ID.String()).Msg("Error updating reference book")
		return fmt.Errorf("error updating reference book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}

// Delete removes a reference book row
func (r *ReferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM reference_books WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Str("referenceID", id.String()).Msg("Error deleting reference book")
		return fmt.Errorf("error deleting reference book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReferenceNotFound
	}
	return nil
}
