package etl

import (
	"strings"

	"github.com/bangtanmom/contentsync/pkg/models"
)

// Validator checks a normalized record before it is sent anywhere.
type Validator struct {
	Required []string
}

// NewValidator returns a validator requiring a title and a slug.
func NewValidator() *Validator {
	return &Validator{Required: []string{"title", "slug"}}
}

// ValidateDocument returns ErrMissingTitleSlug if a required field is blank.
func (v *Validator) ValidateDocument(doc models.Record) error {
	for _, field := range v.Required {
		if strings.TrimSpace(doc.String(field)) == "" {
			return ErrMissingTitleSlug
		}
	}
	return nil
}
