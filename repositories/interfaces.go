package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/llm-datagen/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// TemplateRepository handles prompt template data operations
type TemplateRepository interface {
	// GetByID retrieves a template by ID, returning ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.PromptTemplate, error)

	// ListForOwner retrieves the public templates plus those owned by owner
	ListForOwner(ctx context.Context, owner string) ([]*models.PromptTemplate, error)

	// Create stores a new template
	Create(ctx context.Context, tmpl *models.PromptTemplate) error
}

// UsageRepository handles usage log data operations
type UsageRepository interface {
	// Insert inserts a new usage log entry
	Insert(ctx context.Context, log *models.UsageLog) error

	// ListByPrincipal retrieves usage logs for a principal, newest first
	ListByPrincipal(ctx context.Context, principal string, limit, offset int) ([]*models.UsageLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Templates TemplateRepository
	UsageLogs UsageRepository
}
