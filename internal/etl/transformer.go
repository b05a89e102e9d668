package etl

import (
	"strings"

	"github.com/bangtanmom/contentsync/pkg/models"
	"github.com/bangtanmom/contentsync/pkg/utils"
)

// Transformer maps loosely shaped source rows onto the destination schema.
type Transformer struct {
	Mapping   *models.MappingSchema
	Validator *Validator
}

// NewTransformer returns a transformer for mapping. A nil mapping uses the
// default post rules.
func NewTransformer(mapping *models.MappingSchema) *Transformer {
	if mapping == nil {
		mapping = models.DefaultPostMapping()
	}
	return &Transformer{Mapping: mapping, Validator: NewValidator()}
}

// Normalize resolves every mapped field of row. The returned record is always
// usable as an error payload, even when err is ErrMissingTitleSlug.
func (t *Transformer) Normalize(row models.Record) (models.Record, error) {
	doc := make(models.Record, len(t.Mapping.Fields))

	for _, rule := range t.Mapping.Fields {
		val := resolve(row, doc, rule)
		if strings.TrimSpace(val) == "" {
			if rule.KeepEmpty {
				doc[rule.Target] = ""
			}
			continue
		}
		doc[rule.Target] = val
	}

	for _, f := range models.IdentityFields {
		delete(doc, f)
	}

	if err := t.Validator.ValidateDocument(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// resolve returns the value of one target field: the first non-blank source
// field, else a slug of an earlier target, else the rule default.
func resolve(row, doc models.Record, rule models.FieldRule) string {
	val := ""
	for _, src := range rule.Sources {
		s, ok := utils.ConvertToString(row[src])
		if ok && strings.TrimSpace(s) != "" {
			val = s
			break
		}
	}
	if val == "" && rule.DeriveFrom != "" {
		val = utils.Slugify(doc.String(rule.DeriveFrom))
	}
	if val == "" {
		val = rule.Default
	}

	if rule.Lower {
		val = strings.ToLower(val)
	}
	if rule.Transform == models.TransformDropbox && val != "" {
		val = utils.NormalizeDropboxURL(val)
	}
	return val
}
