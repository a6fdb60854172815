package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/formatter"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/services"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/desertthunder/crosspost/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadComposer fetches the catalog, exiting early with the load error.
func (r *Runner) loadComposer(ctx context.Context) (*composer.Composer, error) {
	c, err := composer.Load(ctx, r.backend)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("catalog loaded", "platforms", c.Catalog().Len())
	return c, nil
}

// Platforms prints the platform catalog.
func (r *Runner) Platforms(ctx context.Context, cmd *cli.Command) error {
	c, err := r.loadComposer(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.CatalogToJSON(c.Catalog())
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}
	return r.writeBytes(formatter.CatalogToText(c.Catalog()))
}

// Limits prints the character limit table.
func (r *Runner) Limits(ctx context.Context, cmd *cli.Command) error {
	limits, err := r.backend.CharacterLimits(ctx)
	if err != nil {
		return &composer.LoadError{Endpoint: services.CharacterLimitsPath, Err: err}
	}

	if cmd.Bool("json") {
		return r.writeJSON(limits, true)
	}
	return r.writeBytes(formatter.LimitsToText(limits))
}

// Post composes a post from flags, submits it and prints the per-platform results.
//
// Validation errors are returned before any request. Failed posts keep their drafts so
// they can be retried with --from-draft.
func (r *Runner) Post(ctx context.Context, cmd *cli.Command) error {
	pub := r.publisher()

	c, err := pub.Load(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("from-draft") {
		restored, err := pub.RestoreDrafts(c)
		if err != nil {
			return fmt.Errorf("failed to load drafts: %w", err)
		}
		if !restored {
			return fmt.Errorf("%w: no saved drafts", shared.ErrRecordNotFound)
		}
	}

	if err := r.applyPostFlags(cmd, c); err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		sub, err := c.Validate()
		if err != nil {
			return err
		}
		for _, img := range sub.Images {
			r.logger.Info("would attach image", "name", img.Name, "bytes", len(img.Data))
		}
		data, err := formatter.RequestToJSON(sub.Request)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase.String())
		}
	}()

	res, err := pub.Publish(ctx, progress, c)
	close(progress)
	<-done

	if res == nil {
		return err
	}

	if asJSON {
		postID := ""
		if res.Record != nil {
			postID = res.Record.ID()
		}
		data, jerr := formatter.OutcomeToJSON(res.Outcome, postID)
		if jerr != nil {
			return jerr
		}
		if werr := r.writeBytes(data); werr != nil {
			return werr
		}
		return err
	}

	if werr := r.writeBytes(formatter.OutcomeToText(res.Outcome)); werr != nil {
		return werr
	}
	if res.DraftsSaved {
		r.writePlain("Drafts saved. Retry with: crosspost post --from-draft\n")
	}
	return err
}

// applyPostFlags applies mode, selection and text flags to c in that order.
func (r *Runner) applyPostFlags(cmd *cli.Command, c *composer.Composer) error {
	overrides, err := parseTextFor(cmd.StringSlice("text-for"))
	if err != nil {
		return err
	}

	if ids := cmd.StringSlice("platform"); len(ids) > 0 {
		if err := r.selectPlatforms(c, ids); err != nil {
			return err
		}
	}

	switch {
	case cmd.String("mode") != "":
		mode, err := models.ParsePostMode(cmd.String("mode"))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		c.SetMode(mode)
	case len(overrides) > 0:
		c.SetMode(models.Individual)
	case !cmd.Bool("from-draft"):
		mode, err := models.ParsePostMode(r.config.Composer.DefaultMode)
		if err != nil {
			r.logger.Warn("ignoring composer.default_mode", "error", err)
			mode = models.Unified
		}
		c.SetMode(mode)
	}

	text, err := postText(cmd)
	if err != nil {
		return err
	}
	if text != "" {
		if err := setText(c, text); err != nil {
			return err
		}
	}

	if len(overrides) > 0 && c.Mode() != models.Individual {
		return fmt.Errorf("%w: --text-for requires --mode individual", shared.ErrInvalidFlag)
	}
	for _, o := range overrides {
		if err := c.Select(o.platform); err != nil {
			return err
		}
		if err := setDraft(c, o.platform, o.text); err != nil {
			return err
		}
	}
	return attachImages(c, cmd.StringSlice("image"))
}

// attachImages reads each path and attaches it to c.
func attachImages(c *composer.Composer, paths []string) error {
	if len(paths) > models.MaxImages {
		return fmt.Errorf("%w: --image given %d times, at most %d", shared.ErrTooManyImages, len(paths), models.MaxImages)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if err := c.AttachImage(models.Image{Name: filepath.Base(path), Data: data}); err != nil {
			return err
		}
	}
	return nil
}

// selectPlatforms replaces the selection with ids. Platforms that are not enabled are
// skipped with a warning; unknown identifiers are an error.
func (r *Runner) selectPlatforms(c *composer.Composer, ids []string) error {
	keep := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		p, ok := c.Catalog().Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrUnknownPlatform, id)
		}
		if !p.Enabled {
			r.logger.Warn("skipping platform that is not enabled", "platform", id)
			continue
		}
		keep = append(keep, id)
	}
	return c.SelectOnly(keep...)
}

type textOverride struct {
	platform string
	text     string
}

func parseTextFor(values []string) ([]textOverride, error) {
	out := make([]textOverride, 0, len(values))
	for _, v := range values {
		id, text, ok := strings.Cut(v, "=")
		id = strings.ToLower(strings.TrimSpace(id))
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: --text-for expects platform=text, got %q", shared.ErrInvalidFlag, v)
		}
		out = append(out, textOverride{platform: id, text: text})
	}
	return out, nil
}

// postText returns the positional text or the contents of --file.
func postText(cmd *cli.Command) (string, error) {
	text := cmd.StringArg("text")
	path := cmd.String("file")
	if text != "" && path != "" {
		return "", fmt.Errorf("%w: pass the text or --file, not both", shared.ErrInvalidArgument)
	}
	if path == "" {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read post file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// setText writes text into the current mode: the unified text, or every selected
// platform's draft in individual mode. Text over the limit is rejected rather than cut.
func setText(c *composer.Composer, text string) error {
	if c.Mode() == models.Individual {
		for _, id := range c.ActivePlatforms() {
			if err := setDraft(c, id, text); err != nil {
				return err
			}
		}
		return nil
	}

	limit, err := c.Limit()
	if err != nil {
		return err
	}
	if n := shared.CharCount(text); n > limit {
		return fmt.Errorf("%w: %d/%d", shared.ErrExceedsLimit, n, limit)
	}
	return c.SetUnifiedText(text)
}

func setDraft(c *composer.Composer, id, text string) error {
	limit, err := c.LimitFor(id)
	if err != nil {
		return err
	}
	if n := shared.CharCount(text); n > limit {
		return &composer.PlatformError{Platform: id, Err: fmt.Errorf("%w: %d/%d", shared.ErrExceedsLimit, n, limit)}
	}
	return c.SetDraft(id, text)
}

// isValidation reports whether err was raised before any request was sent.
func isValidation(err error) bool {
	for _, target := range []error{
		shared.ErrNoPlatformSelected, shared.ErrEmptyContent, shared.ErrExceedsLimit,
		shared.ErrUnknownPlatform, shared.ErrInvalidSelection, shared.ErrInvalidFlag,
		shared.ErrTooManyImages, shared.ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
