// Package plan holds the static training-plan catalog and the pure progress
// calculations driven by a user's check-in history.
package plan

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

var ErrInvalidCatalog = errors.New("invalid plan catalog")

type Plan struct {
	ID             string   `json:"id" toml:"id"`
	Name           string   `json:"name" toml:"name"`
	Title          string   `json:"title" toml:"title"`
	Description    string   `json:"description" toml:"description"`
	DurationDays   int      `json:"duration_days" toml:"duration_days"`
	LoadMultiplier float64  `json:"load_multiplier" toml:"load_multiplier"`
	NextPlanID     *string  `json:"next_plan_id,omitempty" toml:"next_plan_id"`
	Goals          []string `json:"goals" toml:"goals"`
}

// Catalog is an ordered, validated set of plans.
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

func strPtr(s string) *string { return &s }

// DefaultCatalog is the built-in 30 -> 90 -> 180 day progression.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Plan{
		{
			ID:             "30_days",
			Name:           "30 Days",
			Title:          "Consistency",
			Description:    "Build the habit. Train even on the hard days.",
			DurationDays:   30,
			LoadMultiplier: 1.0,
			NextPlanID:     strPtr("90_days"),
			Goals:          []string{"Establish a routine", "Master exercise form", "Initial strength gain"},
		},
		{
			ID:             "90_days",
			Name:           "90 Days",
			Title:          "Transformation",
			Description:    "See real changes. Body and mind.",
			DurationDays:   90,
			LoadMultiplier: 1.25,
			NextPlanID:     strPtr("180_days"),
			Goals:          []string{"Visible muscle gain", "Muscle definition", "Exercise progressions"},
		},
		{
			ID:             "180_days",
			Name:           "180 Days",
			Title:          "Calisthenics Physique",
			Description:    "Master your body. Advanced skills.",
			DurationDays:   180,
			LoadMultiplier: 1.5,
			Goals:          []string{"Muscle-up", "Perfect pistol squat", "Advanced L-sit", "Athletic physique"},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func NewCatalog(plans []Plan) (*Catalog, error) {
	c := &Catalog{
		plans: make([]Plan, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	copy(c.plans, plans)
	for i, p := range c.plans {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: plan %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %q", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = i
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for _, p := range c.plans {
		if p.DurationDays <= 0 {
			return fmt.Errorf("%w: plan %q duration must be positive", ErrInvalidCatalog, p.ID)
		}
		if p.LoadMultiplier < 1.0 {
			return fmt.Errorf("%w: plan %q load multiplier below 1.0", ErrInvalidCatalog, p.ID)
		}
		if p.NextPlanID != nil {
			if _, ok := c.byID[*p.NextPlanID]; !ok {
				return fmt.Errorf("%w: plan %q points to unknown plan %q", ErrInvalidCatalog, p.ID, *p.NextPlanID)
			}
		}
	}

	// successor chains must terminate
	for _, p := range c.plans {
		seen := map[string]bool{p.ID: true}
		cur := p
		for cur.NextPlanID != nil {
			if seen[*cur.NextPlanID] {
				return fmt.Errorf("%w: cycle through plan %q", ErrInvalidCatalog, *cur.NextPlanID)
			}
			seen[*cur.NextPlanID] = true
			cur = c.plans[c.byID[*cur.NextPlanID]]
		}
	}
	return nil
}

// LoadCatalog reads a TOML file of [[plans]] tables.
func LoadCatalog(path string) (*Catalog, error) {
	var file struct {
		Plans []Plan `toml:"plans"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode plan catalog %s: %w", path, err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("%w: %s defines no plans", ErrInvalidCatalog, path)
	}
	return NewCatalog(file.Plans)
}

func (c *Catalog) Get(id string) (Plan, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Plan{}, false
	}
	return c.plans[i], true
}

// Next returns the successor of the plan with the given id.
func (c *Catalog) Next(id string) (Plan, bool) {
	p, ok := c.Get(id)
	if !ok || p.NextPlanID == nil {
		return Plan{}, false
	}
	return c.Get(*p.NextPlanID)
}

func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}
