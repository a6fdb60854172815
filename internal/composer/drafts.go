package composer

import (
	"fmt"
	"time"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

func (c *Composer) Mode() models.PostMode { return c.mode }

// SetMode switches the posting mode.
//
// Switching to individual mode seeds every selected platform that has no draft
// with the unified text, truncated to the platform's limit. Existing drafts are
// left alone. Switching to unified mode seeds nothing.
func (c *Composer) SetMode(m models.PostMode) {
	if m == c.mode {
		return
	}
	c.mode = m
	if m != models.Individual {
		return
	}
	for _, id := range c.ActivePlatforms() {
		c.seed(id)
	}
}

func (c *Composer) seed(id string) {
	if _, ok := c.drafts[id]; ok {
		return
	}
	limit, err := c.LimitFor(id)
	if err != nil {
		p, _ := c.catalog.Get(id)
		limit = p.Limit
	}
	c.drafts[id] = shared.TruncateChars(c.unified, limit)
}

// UnifiedText returns the shared text.
func (c *Composer) UnifiedText() string { return c.unified }

// SetUnifiedText replaces the shared text, capped at the current unified limit.
func (c *Composer) SetUnifiedText(s string) error {
	limit, err := c.Limit()
	if err != nil {
		return err
	}
	c.unified = shared.TruncateChars(s, limit)
	return nil
}

// Draft returns the individual draft of platform and whether one exists.
func (c *Composer) Draft(platform string) (string, bool) {
	s, ok := c.drafts[platform]
	return s, ok
}

// SetDraft replaces the individual draft of platform, capped at its limit.
func (c *Composer) SetDraft(platform string, s string) error {
	if _, ok := c.catalog.Get(platform); !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownPlatform, platform)
	}
	limit, err := c.LimitFor(platform)
	if err != nil {
		return err
	}
	c.drafts[platform] = shared.TruncateChars(s, limit)
	return nil
}

// Text returns the text that would be posted to platform in the current mode.
func (c *Composer) Text(platform string) string {
	if c.mode == models.Unified {
		return c.unified
	}
	return c.drafts[platform]
}

// Snapshot captures mode, selection and text for persistence.
func (c *Composer) Snapshot() models.DraftSet {
	drafts := make(map[string]string, len(c.drafts))
	for k, v := range c.drafts {
		drafts[k] = v
	}
	return models.DraftSet{
		Mode:      c.mode,
		Platforms: c.ActivePlatforms(),
		Unified:   c.unified,
		Drafts:    drafts,
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore loads a saved [models.DraftSet].
//
// Platforms that are no longer in the catalog or no longer enabled are skipped
// and returned so the caller can report them. Text is restored as saved;
// limits are enforced when the post is prepared.
func (c *Composer) Restore(d models.DraftSet) (skipped []string) {
	var keep []string
	for _, id := range d.Platforms {
		if c.checkSelectable(id) != nil {
			skipped = append(skipped, id)
			continue
		}
		keep = append(keep, id)
	}
	if len(keep) > 0 {
		c.selected = make(map[string]bool, len(keep))
		for _, id := range keep {
			c.selected[id] = true
		}
	}

	c.unified = d.Unified
	c.drafts = make(map[string]string, len(d.Drafts))
	for id, text := range d.Drafts {
		if _, ok := c.catalog.Get(id); ok {
			c.drafts[id] = text
		}
	}
	c.mode = d.Mode
	if c.mode == models.Individual {
		for _, id := range c.ActivePlatforms() {
			c.seed(id)
		}
	}
	return skipped
}
