package composer

import (
	"context"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/services"
	"golang.org/x/sync/errgroup"
)

// CatalogSource provides the two read-only tables the composer needs at startup.
type CatalogSource interface {
	Platforms(ctx context.Context) (map[string]models.PlatformInfo, error)
	CharacterLimits(ctx context.Context) (models.CharacterLimits, error)
}

// Load fetches the platform catalog and the character-limit table in parallel and builds a [Composer].
//
// Either fetch failing yields a [*LoadError] and no composer. There is no retry.
func Load(ctx context.Context, src CatalogSource) (*Composer, error) {
	var (
		info   map[string]models.PlatformInfo
		limits models.CharacterLimits
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := src.Platforms(gctx)
		if err != nil {
			return &LoadError{Endpoint: services.PlatformsPath, Err: err}
		}
		info = v
		return nil
	})
	g.Go(func() error {
		v, err := src.CharacterLimits(gctx)
		if err != nil {
			return &LoadError{Endpoint: services.CharacterLimitsPath, Err: err}
		}
		limits = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog, err := models.NewCatalog(info)
	if err != nil {
		return nil, &LoadError{Endpoint: services.PlatformsPath, Err: err}
	}
	if limits == nil {
		limits = models.CharacterLimits{}
	}

	return New(catalog, limits), nil
}
