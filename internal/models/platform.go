package models

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCeiling is the unified-mode character limit used when no platform is selected.
const DefaultCeiling = 3000

// Platform is a social-media destination the backend can post to.
type Platform struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"` // whether the account is linked on the backend
	Limit   int    `json:"limit"`
}

// PlatformInfo is a single value of the /api/platforms map.
type PlatformInfo struct {
	Enabled bool `json:"enabled"`
	Limit   int  `json:"limit"`
}

// CharacterLimits maps platform identifiers to their character limits.
type CharacterLimits map[string]int

// Lookup returns the limit for id.
func (l CharacterLimits) Lookup(id string) (int, bool) {
	v, ok := l[id]
	return v, ok
}

// Catalog is the immutable list of platforms for a session, sorted by identifier.
type Catalog struct {
	platforms []Platform
	index     map[string]int
}

// NewCatalog builds a [Catalog] from the /api/platforms response.
func NewCatalog(info map[string]PlatformInfo) (*Catalog, error) {
	ids := make([]string, 0, len(info))
	for id := range info {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c := &Catalog{
		platforms: make([]Platform, 0, len(ids)),
		index:     make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("platform catalog contains an empty identifier")
		}
		p := info[id]
		if p.Limit <= 0 {
			return nil, fmt.Errorf("platform %s has non-positive limit %d", id, p.Limit)
		}
		c.index[id] = len(c.platforms)
		c.platforms = append(c.platforms, Platform{ID: id, Enabled: p.Enabled, Limit: p.Limit})
	}
	return c, nil
}

// Platforms returns a copy of the platforms in catalog order.
func (c *Catalog) Platforms() []Platform {
	out := make([]Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}

// IDs returns the platform identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.platforms))
	for i, p := range c.platforms {
		ids[i] = p.ID
	}
	return ids
}

// Get returns the platform with the given identifier.
func (c *Catalog) Get(id string) (Platform, bool) {
	i, ok := c.index[id]
	if !ok {
		return Platform{}, false
	}
	return c.platforms[i], true
}

// Position returns the catalog index of id, or -1.
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of platforms.
func (c *Catalog) Len() int { return len(c.platforms) }

// Enabled returns the identifiers of enabled platforms in catalog order.
func (c *Catalog) Enabled() []string {
	var ids []string
	for _, p := range c.platforms {
		if p.Enabled {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
