package composer

import (
	"fmt"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// EffectiveUnifiedLimit is the smallest limit among selection, or [models.DefaultCeiling] when selection is empty.
func EffectiveUnifiedLimit(selection []string, limits models.CharacterLimits) (int, error) {
	if len(selection) == 0 {
		return models.DefaultCeiling, nil
	}

	least := 0
	for i, id := range selection {
		l, err := EffectiveIndividualLimit(id, limits)
		if err != nil {
			return 0, err
		}
		if i == 0 || l < least {
			least = l
		}
	}
	return least, nil
}

// EffectiveIndividualLimit returns limits[platform].
func EffectiveIndividualLimit(platform string, limits models.CharacterLimits) (int, error) {
	l, ok := limits.Lookup(platform)
	if !ok {
		return 0, fmt.Errorf("%w: no character limit for %s", shared.ErrUnknownPlatform, platform)
	}
	return l, nil
}

// Limit returns the limit enforced on the text of the current mode.
// In individual mode there is no shared text, so it is the unified limit of the selection.
func (c *Composer) Limit() (int, error) {
	return EffectiveUnifiedLimit(c.ActivePlatforms(), c.limits)
}

// LimitFor returns the individual limit of platform.
func (c *Composer) LimitFor(platform string) (int, error) {
	return EffectiveIndividualLimit(platform, c.limits)
}

// Counter is a character counter reading.
type Counter struct {
	Count int
	Limit int
	Warn  bool // above 90% of the limit
	Over  bool
}

func (c Counter) String() string {
	return fmt.Sprintf("%d/%d", c.Count, c.Limit)
}

// Remaining is the number of characters left before the limit.
func (c Counter) Remaining() int { return c.Limit - c.Count }

// Usage measures text against limit.
func Usage(text string, limit int) Counter {
	n := shared.CharCount(text)
	return Counter{
		Count: n,
		Limit: limit,
		Warn:  n*10 > limit*9,
		Over:  n > limit,
	}
}
