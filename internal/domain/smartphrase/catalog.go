package smartphrase

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ehr/rounds/internal/domain/rounding"
)

//go:embed builtin.yaml
var builtinYAML []byte

var ErrTemplateNotFound = errors.New("template not found")

type catalogDocument struct {
	Default            string            `yaml:"default"`
	DiagnosisTemplates map[string]string `yaml:"diagnosis_templates"`
	Templates          []Template        `yaml:"templates"`
}

// Catalog is the ordered set of selectable templates plus the
// diagnosis → template suggestion table.
type Catalog struct {
	templates []Template
	index     map[string]int
	diagnosis map[rounding.DiagnosisType]string
	defaultID string
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	c := &Catalog{
		index:     map[string]int{},
		diagnosis: map[rounding.DiagnosisType]string{},
	}
	if err := c.Merge(builtinYAML); err != nil {
		return nil, fmt.Errorf("builtin templates: %w", err)
	}
	return c, nil
}

// LoadFile merges the YAML catalog at path into c.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read templates %s: %w", path, err)
	}
	if err := c.Merge(data); err != nil {
		return fmt.Errorf("templates %s: %w", path, err)
	}
	return nil
}

// Merge adds the templates of a YAML catalog document. A template whose id is
// already present replaces the existing one in place; new ids are appended.
// Diagnosis mappings and the default id are overridden when given.
func (c *Catalog) Merge(data []byte) error {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	seen := map[string]bool{}
	for _, t := range doc.Templates {
		if strings.TrimSpace(t.ID) == "" {
			return errors.New("template id is required")
		}
		if strings.TrimSpace(t.Label) == "" {
			return fmt.Errorf("template %s: label is required", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate template id %s", t.ID)
		}
		seen[t.ID] = true
	}

	templates := append([]Template(nil), c.templates...)
	index := make(map[string]int, len(c.index)+len(doc.Templates))
	for id, i := range c.index {
		index[id] = i
	}
	for _, t := range doc.Templates {
		if i, ok := index[t.ID]; ok {
			templates[i] = t
			continue
		}
		index[t.ID] = len(templates)
		templates = append(templates, t)
	}

	diagnosis := make(map[rounding.DiagnosisType]string, len(c.diagnosis)+len(doc.DiagnosisTemplates))
	for dt, id := range c.diagnosis {
		diagnosis[dt] = id
	}
	for key, id := range doc.DiagnosisTemplates {
		dt := rounding.DiagnosisType(key)
		if !dt.Valid() {
			return fmt.Errorf("unknown diagnosis type %q", key)
		}
		if _, ok := index[id]; !ok {
			return fmt.Errorf("diagnosis %s: %w: %s", key, ErrTemplateNotFound, id)
		}
		diagnosis[dt] = id
	}

	defaultID := c.defaultID
	if doc.Default != "" {
		defaultID = doc.Default
	}
	if defaultID == "" && len(templates) > 0 {
		defaultID = templates[0].ID
	}
	if _, ok := index[defaultID]; !ok && defaultID != "" {
		return fmt.Errorf("default: %w: %s", ErrTemplateNotFound, defaultID)
	}

	c.templates = templates
	c.index = index
	c.diagnosis = diagnosis
	c.defaultID = defaultID
	return nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	return append([]Template(nil), c.templates...)
}

func (c *Catalog) Get(id string) (Template, error) {
	i, ok := c.index[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return c.templates[i], nil
}

// Default returns the template offered when nothing else is selected.
func (c *Catalog) Default() Template {
	if i, ok := c.index[c.defaultID]; ok {
		return c.templates[i]
	}
	return Template{}
}

// ForDiagnosis suggests a template for a diagnosis tag, falling back to the
// default template for tags without a dedicated one.
func (c *Catalog) ForDiagnosis(dt rounding.DiagnosisType) Template {
	if id, ok := c.diagnosis[dt]; ok {
		if t, err := c.Get(id); err == nil {
			return t
		}
	}
	return c.Default()
}
