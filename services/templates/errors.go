package templates

import (
	"errors"
	"fmt"
)

// TemplateNotFoundError is returned when an identifier does not resolve to a usable template
type TemplateNotFoundError struct {
	ID     string
	Reason string
}

func (e *TemplateNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("template %q not found: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("template %q not found", e.ID)
}

// TemplateForbiddenError is returned when the template belongs to another principal
type TemplateForbiddenError struct {
	ID        string
	Principal string
}

func (e *TemplateForbiddenError) Error() string {
	return fmt.Sprintf("template %q is not accessible to this caller", e.ID)
}

// IsNotFound reports whether err is a TemplateNotFoundError
func IsNotFound(err error) bool {
	var target *TemplateNotFoundError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is a TemplateForbiddenError
func IsForbidden(err error) bool {
	var target *TemplateForbiddenError
	return errors.As(err, &target)
}
