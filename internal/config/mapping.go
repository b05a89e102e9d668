package config

import (
	"os"
	"strings"

	"github.com/ubuntu/decorate"

	"github.com/bangtanmom/contentsync/pkg/models"
)

// LoadMapping returns the field rules at filePath, or the default post rules
// when filePath is empty.
func LoadMapping(filePath string) (m *models.MappingSchema, err error) {
	if filePath == "" {
		return models.DefaultPostMapping(), nil
	}
	defer decorate.OnError(&err, "could not load mapping file %q", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return models.LoadMapping(data)
}

// ApplyMapping defaults an unset collection to the one named by m, then to
// DefaultCollection.
func (c *Config) ApplyMapping(m *models.MappingSchema) {
	if c.Collection == "" && m != nil {
		c.Collection = strings.TrimSpace(m.Collection)
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
}
