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

var materialColumns = []string{
	"id", "title", "description", "branch", "semester", "subject_id", "subject_name",
	"module_id", "module_name", "file_path", "file_name", "file_size",
	"COALESCE(uploaded_by, 0)", "created_at", "updated_at",
}

// MaterialRepository handles database operations for materials
type MaterialRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMaterialRepository creates a new MaterialRepository
func NewMaterialRepository(db *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	m := &models.Material{}
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Branch, &m.Semester, &m.SubjectID, &m.SubjectName,
		&m.ModuleID, &m.ModuleName, &m.FilePath, &m.FileName, &m.FileSize,
		&m.UploadedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMaterialNotFound
		}
		return nil, err
	}
	return m, nil
}

// Create inserts a material. A zero ID is replaced with a new UUID.
func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	var uploadedBy interface{}
	if m.UploadedBy != 0 {
		uploadedBy = m.UploadedBy
	}

	sql, args, err := r.sb.Insert("materials").
		Columns("id", "title", "description", "branch", "semester", "subject_id", "subject_name",
			"module_id", "module_name", "file_path", "file_name", "file_size", "uploaded_by").
		Values(m.ID, m.Title, m.Description, m.Branch, m.Semester, m.SubjectID, m.SubjectName,
			m.ModuleID, m.ModuleName, m.FilePath, m.FileName, m.FileSize, uploadedBy).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create material query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("material violates a table constraint")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("subjectID", m.SubjectID).Msg("Error creating material")
		return fmt.Errorf("error creating material: %w", err)
	}
	return nil
}

// GetByID retrieves a material by ID
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	sql, args, err := r.sb.Select(materialColumns...).
		From("materials").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get material query: %w", err)
	}

	m, err := scanMaterial(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if !errors.Is(err, apperrors.ErrMaterialNotFound) {
			logger.Error().Err(err).Str("materialID", id.String()).Msg("Error retrieving material")
		}
		return nil, err
	}
	return m, nil
}

// List returns matching materials, newest first
func (r *MaterialRepository) List(ctx context.Context, filter models.ContentFilter) ([]*models.Material, error) {
	where := squirrel.Eq{"branch": filter.Branch, "semester": filter.Semester}
	if filter.SubjectID != "" {
		where["subject_id"] = filter.SubjectID
	}
	if filter.ModuleID != "" {
		where["module_id"] = filter.ModuleID
	}

	sql, args, err := r.sb.Select(materialColumns...).
		From("materials").
		Where(where).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list materials query: %w", err)
	}

	return r.query(ctx, sql, args)
}

// ListPage returns one page of all materials, newest first, with the total count
func (r *MaterialRepository) ListPage(ctx context.Context, offset uint64, limit int) ([]*models.Material, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("materials").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count materials query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting materials")
		return nil, 0, fmt.Errorf("error counting materials: %w", err)
	}
	if total == 0 {
		return []*models.Material{}, 0, nil
	}

	sql, args, err := r.sb.Select(materialColumns...).
		From("materials").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list materials query: %w", err)
	}

	items, err := r.query(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MaterialRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.Material, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying materials")
		return nil, fmt.Errorf("error querying materials: %w", err)
	}
	defer rows.Close()

	items := []*models.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning material row")
			return nil, fmt.Errorf("error scanning material: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating materials: %w", err)
	}
	return items, nil
}

// Update writes the mutable fields: title, description and the file reference.
// Placement fields never change.
func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) error {
	m.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("materials").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("file_path", m.FilePath).
		Set("file_name", m.FileName).
		Set("file_size", m.FileSize).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update material query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("materialID", m.ID.String()).Msg("Error updating material")
		return fmt.Errorf("error updating material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}

// Delete removes a material row
func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("materials").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete material query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("materialID", id.String()).Msg("Error deleting material")
		return fmt.Errorf("error deleting material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}
