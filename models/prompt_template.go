package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateKind selects which generation mode a template body serves
type TemplateKind string

const (
	TemplateKindIndependent TemplateKind = "independent"
	TemplateKindCoherent    TemplateKind = "coherent"
)

// PromptTemplate is a stored prompt body with {{placeholders}}
type PromptTemplate struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	OwnerID   *string      `json:"owner_id,omitempty" db:"owner_id"`
	Body      string       `json:"body" db:"body"`
	Kind      TemplateKind `json:"kind" db:"kind"`
	IsDefault bool         `json:"is_default" db:"is_default"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the PromptTemplate model
func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

// IsValid reports whether the kind is known
func (k TemplateKind) IsValid() bool {
	return k == TemplateKindIndependent || k == TemplateKindCoherent
}

// IsPublic reports whether the template has no owner
func (t *PromptTemplate) IsPublic() bool {
	return t.OwnerID == nil || *t.OwnerID == ""
}

// AccessibleBy reports whether principal may use the template.
// Public templates are open to everyone, owned ones only to their owner.
func (t *PromptTemplate) AccessibleBy(principal string) bool {
	if t.IsPublic() {
		return true
	}
	return principal != "" && *t.OwnerID == principal
}
