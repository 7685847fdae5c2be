package plans

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"tenantnotes/internal/domain/models"
)

//go:embed config/plans.yaml
var configFiles embed.FS

// Definition describes the limits attached to one plan.
type Definition struct {
	DisplayName string `yaml:"display_name" json:"displayName"`
	NoteLimit   int    `yaml:"note_limit" json:"noteLimit"` // 0 = unlimited
}

// Unlimited reports whether the plan has no note quota.
func (d Definition) Unlimited() bool {
	return d.NoteLimit <= 0
}

type catalogue struct {
	Plans map[models.Plan]Definition `yaml:"plans"`
}

// Registry holds the plan catalogue loaded from the embedded YAML file.
// It is immutable after Parse and safe for concurrent use.
type Registry struct {
	plans map[models.Plan]Definition
}

// NewRegistry loads the embedded plan catalogue.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/plans.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read plans.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML. Every known plan must be present.
func Parse(data []byte) (*Registry, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plans: %w", err)
	}

	for _, p := range []models.Plan{models.PlanFree, models.PlanPro} {
		def, ok := c.Plans[p]
		if !ok {
			return nil, fmt.Errorf("plan %s missing from catalogue", p)
		}
		if def.NoteLimit < 0 {
			return nil, fmt.Errorf("plan %s: note_limit must not be negative", p)
		}
	}

	return &Registry{plans: c.Plans}, nil
}

// Get returns the definition for a plan.
func (r *Registry) Get(plan models.Plan) (Definition, error) {
	def, ok := r.plans[plan]
	if !ok {
		return Definition{}, fmt.Errorf("unknown plan: %s", plan)
	}
	return def, nil
}

// NoteLimit returns the note quota for a plan, 0 meaning unlimited.
func (r *Registry) NoteLimit(plan models.Plan) (int, error) {
	def, err := r.Get(plan)
	if err != nil {
		return 0, err
	}
	return def.NoteLimit, nil
}
