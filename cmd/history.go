package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/desertthunder/crosspost/internal/formatter"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/urfave/cli/v3"
)

// DraftsList prints the drafts saved after the last failed post.
func (r *Runner) DraftsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}

	d, err := r.drafts.Load()
	if errors.Is(err, shared.ErrRecordNotFound) {
		return r.writePlain("No saved drafts\n")
	}
	if err != nil {
		return fmt.Errorf("failed to load drafts: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(draftJSON{
			Mode:      d.Mode.String(),
			Platforms: d.Platforms,
			Unified:   d.Unified,
			Drafts:    d.Drafts,
			UpdatedAt: d.UpdatedAt.Format("2006-01-02 15:04:05"),
		}, true)
	}

	r.writePlainHeader("Saved drafts")
	r.writePlain("Saved:     %s\n", d.UpdatedAt.Format("2006-01-02 15:04"))
	r.writePlain("Mode:      %s\n", d.Mode)
	r.writePlain("Platforms: %v\n", d.Platforms)
	if d.Unified != "" {
		r.writePlain("\nUnified:\n  %s\n", d.Unified)
	}

	ids := make([]string, 0, len(d.Drafts))
	for id := range d.Drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.writePlain("\n%s:\n  %s\n", shared.DisplayName(id), d.Drafts[id])
	}
	return nil
}

type draftJSON struct {
	Mode      string            `json:"mode"`
	Platforms []string          `json:"platforms"`
	Unified   string            `json:"unified,omitempty"`
	Drafts    map[string]string `json:"drafts,omitempty"`
	UpdatedAt string            `json:"updated_at"`
}

// DraftsClear discards saved drafts.
func (r *Runner) DraftsClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}
	if err := r.drafts.Clear(); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	r.logger.Info("drafts cleared")
	return r.writePlain("✓ Drafts cleared\n")
}

// History prints or exports the most recent posts.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}

	posts, err := r.history.List(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" || cmd.IsSet("output") {
		written, err := formatter.WriteHistoryExport(posts, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("history exported", "path", written, "posts", len(posts))
		return r.writePlain("✓ Exported %d posts to %s\n", len(posts), written)
	}

	data, err := formatter.FormatHistory(posts, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// HistoryShow prints a single post.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: post id", shared.ErrMissingArgument)
	}
	if err := r.openStores(); err != nil {
		return err
	}

	post, err := r.history.Get(id)
	if err != nil {
		return err
	}

	data, err := formatter.FormatHistory([]*models.PostRecord{post}, cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}

	if cmd.String("format") != "text" {
		return nil
	}
	for _, o := range post.Outcomes() {
		r.writePlain("\n%s:\n  %s\n", shared.DisplayName(o.Platform), o.Content)
	}
	return nil
}

// HistoryDelete removes a post from history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: post id", shared.ErrMissingArgument)
	}
	if err := r.openStores(); err != nil {
		return err
	}

	if err := r.history.Delete(id); err != nil {
		return err
	}
	r.logger.Info("post deleted", "id", id)
	return r.writePlain("✓ Deleted %s\n", id)
}
