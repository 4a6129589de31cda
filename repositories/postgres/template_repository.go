package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/repositories"
	"go.uber.org/zap"
)

const templateColumns = `id, name, owner_id, body, kind, is_default, created_at, updated_at`

// TemplateRepository implements the repositories.TemplateRepository interface
type TemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *zap.Logger) repositories.TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PromptTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM prompt_templates WHERE id = $1`

	tmpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tmpl, nil
}

// ListForOwner retrieves public templates plus those owned by owner
func (r *TemplateRepository) ListForOwner(ctx context.Context, owner string) ([]*models.PromptTemplate, error) {
	query := `SELECT ` + templateColumns + `
		FROM prompt_templates
		WHERE owner_id IS NULL OR owner_id = $1
		ORDER BY is_default DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.PromptTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// Create stores a new template
func (r *TemplateRepository) Create(ctx context.Context, tmpl *models.PromptTemplate) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	now := time.Now()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = now

	query := `INSERT INTO prompt_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		tmpl.ID,
		tmpl.Name,
		tmpl.OwnerID,
		tmpl.Body,
		tmpl.Kind,
		tmpl.IsDefault,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	r.logger.Debug("template created", zap.String("id", tmpl.ID.String()), zap.String("kind", string(tmpl.Kind)))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*models.PromptTemplate, error) {
	tmpl := &models.PromptTemplate{}
	var owner sql.NullString
	err := row.Scan(
		&tmpl.ID,
		&tmpl.Name,
		&owner,
		&tmpl.Body,
		&tmpl.Kind,
		&tmpl.IsDefault,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		tmpl.OwnerID = &owner.String
	}
	return tmpl, nil
}
