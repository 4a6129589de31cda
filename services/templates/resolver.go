package templates

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/repositories"
)

// Template is a resolved prompt body ready for hydration
type Template struct {
	ID      string
	Body    string
	Kind    models.TemplateKind
	Default bool
}

// Resolver maps generator types and template IDs to prompt bodies
type Resolver struct {
	repo   repositories.TemplateRepository
	logger *zap.Logger
	nonce  func() string
}

// NewResolver creates a resolver. repo may be nil, in which case only the
// compiled-in defaults resolve.
func NewResolver(repo repositories.TemplateRepository, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		repo:   repo,
		logger: logger,
		nonce: func() string {
			return strconv.FormatFloat(rand.Float64(), 'f', -1, 64)
		},
	}
}

// Resolve returns the template for a default generator type or a stored template ID
func (r *Resolver) Resolve(ctx context.Context, id, principal string) (*Template, error) {
	if base, ok := defaultBases[id]; ok {
		return &Template{
			ID:      id,
			Body:    base + fmt.Sprintf(independentSuffix, r.nonce()),
			Kind:    models.TemplateKindIndependent,
			Default: true,
		}, nil
	}

	stored, err := r.lookup(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	return &Template{
		ID:   stored.ID.String(),
		Body: stored.Body,
		Kind: stored.Kind,
	}, nil
}

// ResolveCoherent returns the survey prompt body. An empty id selects the
// built-in default; otherwise the stored template must be coherent.
func (r *Resolver) ResolveCoherent(ctx context.Context, id, principal string) (*Template, error) {
	if id == "" {
		return &Template{Body: DefaultCoherentBody, Kind: models.TemplateKindCoherent, Default: true}, nil
	}

	stored, err := r.lookup(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	if stored.Kind != models.TemplateKindCoherent {
		return nil, &TemplateNotFoundError{ID: id, Reason: "not a coherent template"}
	}
	return &Template{ID: stored.ID.String(), Body: stored.Body, Kind: stored.Kind}, nil
}

// List returns the templates visible to principal
func (r *Resolver) List(ctx context.Context, principal string) ([]*models.PromptTemplate, error) {
	if r.repo == nil {
		return nil, nil
	}
	return r.repo.ListForOwner(ctx, principal)
}

// Get returns one stored template after the access check
func (r *Resolver) Get(ctx context.Context, id, principal string) (*models.PromptTemplate, error) {
	return r.lookup(ctx, id, principal)
}

func (r *Resolver) lookup(ctx context.Context, id, principal string) (*models.PromptTemplate, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return nil, &TemplateNotFoundError{ID: id, Reason: "unknown generator type"}
	}
	if r.repo == nil {
		return nil, &TemplateNotFoundError{ID: id}
	}

	stored, err := r.repo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &TemplateNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to load template %s: %w", id, err)
	}

	if !stored.AccessibleBy(principal) {
		r.logger.Warn("template access denied",
			zap.String("template_id", id),
			zap.String("principal", principal))
		return nil, &TemplateForbiddenError{ID: id, Principal: principal}
	}
	return stored, nil
}
