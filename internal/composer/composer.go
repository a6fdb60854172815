package composer

import (
	"fmt"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// State is a step of the submission state machine.
type State int

const (
	Idle State = iota
	Submitting
	Success
	PartialFailure
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case PartialFailure:
		return "partial_failure"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Composer is the per-session composer state.
type Composer struct {
	catalog  *models.Catalog
	limits   models.CharacterLimits
	selected map[string]bool
	mode     models.PostMode
	unified  string
	drafts   map[string]string
	images   []models.Image
	state    State
}

// New builds a composer over an already loaded catalog. Enabled platforms start selected.
func New(catalog *models.Catalog, limits models.CharacterLimits) *Composer {
	c := &Composer{
		catalog:  catalog,
		limits:   limits,
		selected: make(map[string]bool),
		mode:     models.Unified,
		drafts:   make(map[string]string),
		state:    Idle,
	}
	for _, id := range catalog.Enabled() {
		c.selected[id] = true
	}
	return c
}

func (c *Composer) Catalog() *models.Catalog        { return c.catalog }
func (c *Composer) Limits() models.CharacterLimits { return c.limits }
func (c *Composer) State() State                   { return c.state }

// Selected reports whether id is in the selection.
func (c *Composer) Selected(id string) bool { return c.selected[id] }

// ActivePlatforms returns the selection in catalog order.
func (c *Composer) ActivePlatforms() []string {
	ids := make([]string, 0, len(c.selected))
	for _, id := range c.catalog.IDs() {
		if c.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Toggle flips the selection of id.
//
// Unknown identifiers return [shared.ErrUnknownPlatform] and disabled platforms
// return [shared.ErrInvalidSelection]; in both cases nothing changes. Selecting a
// platform in individual mode seeds its draft from the unified text.
func (c *Composer) Toggle(id string) error {
	if err := c.checkSelectable(id); err != nil {
		return err
	}
	if c.selected[id] {
		delete(c.selected, id)
		return nil
	}
	c.selected[id] = true
	if c.mode == models.Individual {
		c.seed(id)
	}
	return nil
}

// Select adds id to the selection. Selecting an already selected platform is a no-op.
func (c *Composer) Select(id string) error {
	if c.selected[id] {
		return nil
	}
	return c.Toggle(id)
}

// Deselect removes id from the selection. Its draft is kept.
func (c *Composer) Deselect(id string) error {
	if _, ok := c.catalog.Get(id); !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownPlatform, id)
	}
	delete(c.selected, id)
	return nil
}

// SelectOnly replaces the selection with ids, validating every entry before changing anything.
func (c *Composer) SelectOnly(ids ...string) error {
	for _, id := range ids {
		if err := c.checkSelectable(id); err != nil {
			return err
		}
	}
	for _, id := range c.ActivePlatforms() {
		delete(c.selected, id)
	}
	for _, id := range ids {
		if err := c.Select(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composer) checkSelectable(id string) error {
	p, ok := c.catalog.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownPlatform, id)
	}
	if !p.Enabled {
		return fmt.Errorf("%w: %s", shared.ErrInvalidSelection, id)
	}
	return nil
}
