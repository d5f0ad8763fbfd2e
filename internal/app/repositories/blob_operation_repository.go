package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

// BlobOperationRepository persists the blob operation journal
type BlobOperationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBlobOperationRepository creates a new BlobOperationRepository
func NewBlobOperationRepository(db *pgxpool.Pool) *BlobOperationRepository {
	return &BlobOperationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var blobOperationColumns = []string{
	"id", "kind", "resource", "record_id", "bucket", "old_path", "new_path",
	"new_file_name", "new_file_size", "status", "last_error", "attempts", "created_at", "updated_at",
}

func scanBlobOperation(row pgx.Row) (*models.BlobOperation, error) {
	op := &models.BlobOperation{}
	err := row.Scan(&op.ID, &op.Kind, &op.Resource, &op.RecordID, &op.Bucket, &op.OldPath, &op.NewPath,
		&op.NewFileName, &op.NewFileSize, &op.Status, &op.LastError, &op.Attempts, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBlobOpNotFound
		}
		return nil, err
	}
	return op, nil
}

// Create records a new journal entry. Status defaults to pending.
func (r *BlobOperationRepository) Create(ctx context.Context, op *models.BlobOperation) error {
	if op.Status == "" {
		op.Status = models.BlobOpPending
	}

	sql, args, err := r.sb.Insert("blob_operations").
		Columns("kind", "resource", "record_id", "bucket", "old_path", "new_path", "new_file_name", "new_file_size", "status").
		Values(op.Kind, op.Resource, op.RecordID, op.Bucket, op.OldPath, op.NewPath, op.NewFileName, op.NewFileSize, op.Status).
		Suffix("RETURNING id, attempts, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create blob operation query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&op.ID, &op.Attempts, &op.CreatedAt, &op.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("recordID", op.RecordID.String()).Str("kind", string(op.Kind)).Msg("Error creating blob operation")
		return fmt.Errorf("error creating blob operation: %w", err)
	}
	return nil
}

// UpdateStatus moves an entry to status. An empty lastError clears the column.
func (r *BlobOperationRepository) UpdateStatus(ctx context.Context, id int64, status models.BlobOpStatus, lastError string, countAttempt bool) error {
	var errCol *string
	if lastError != "" {
		errCol = &lastError
	}

	ub := r.sb.Update("blob_operations").
		Set("status", status).
		Set("last_error", errCol).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id})
	if countAttempt {
		ub = ub.Set("attempts", squirrel.Expr("attempts + 1"))
	}

	sql, args, err := ub.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update blob operation query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("opID", id).Msg("Error updating blob operation")
		return fmt.Errorf("error updating blob operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBlobOpNotFound
	}
	return nil
}

// ListPending returns pending and failed entries created before olderThan.
// Entries with fewer attempts come first so a stuck entry cannot hold the
// head of every batch.
func (r *BlobOperationRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.BlobOperation, error) {
	sql, args, err := r.sb.Select(blobOperationColumns...).
		From("blob_operations").
		Where(squirrel.Eq{"status": []models.BlobOpStatus{models.BlobOpPending, models.BlobOpFailed}}).
		Where(squirrel.Lt{"created_at": olderThan}).
		OrderBy("attempts ASC", "created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list pending query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// List returns a page of entries, newest first. An empty status matches all.
func (r *BlobOperationRepository) List(ctx context.Context, status models.BlobOpStatus, offset uint64, limit int) ([]*models.BlobOperation, int64, error) {
	where := squirrel.And{}
	if status != "" {
		where = append(where, squirrel.Eq{"status": status})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("blob_operations").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count blob operations query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting blob operations")
		return nil, 0, fmt.Errorf("error counting blob operations: %w", err)
	}

	sql, args, err := r.sb.Select(blobOperationColumns...).
		From("blob_operations").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list blob operations query: %w", err)
	}

	ops, err := r.query(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}

func (r *BlobOperationRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.BlobOperation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying blob operations")
		return nil, fmt.Errorf("error querying blob operations: %w", err)
	}
	defer rows.Close()

	ops := []*models.BlobOperation{}
	for rows.Next() {
		op, err := scanBlobOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning blob operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blob operations: %w", err)
	}
	return ops, nil
}
