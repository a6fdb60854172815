package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// Backend is the posting backend: catalog source and poster in one.
type Backend interface {
	composer.CatalogSource
	composer.Poster
}

// HistoryStore persists post records.
type HistoryStore interface {
	Create(post *models.PostRecord) error
}

// DraftStore persists the draft set kept after a failed post.
type DraftStore interface {
	Save(d models.DraftSet) error
	Load() (*models.DraftSet, error)
	Clear() error
}

// PublishResult is the outcome of [Publisher.Publish] together with what was stored.
type PublishResult struct {
	Outcome     composer.Outcome
	Record      *models.PostRecord // nil when history is disabled or failed to save
	DraftsSaved bool
}

// Publisher orchestrates loading and posting. History and drafts are optional.
type Publisher struct {
	backend Backend
	history HistoryStore
	drafts  DraftStore
	logger  *log.Logger
}

// NewPublisher creates a new Publisher. history and drafts may be nil.
func NewPublisher(backend Backend, history HistoryStore, drafts DraftStore, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Publisher{backend: backend, history: history, drafts: drafts, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Publisher) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches the catalog and builds a composer.
func (p *Publisher) Load(ctx context.Context, progress chan<- ProgressUpdate) (*composer.Composer, error) {
	if p.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	p.sendProgress(progress, loadingCatalogUpdate())

	c, err := composer.Load(ctx, p.backend)
	if err != nil {
		return nil, err
	}

	p.sendProgress(progress, catalogLoadedUpdate(c))
	return c, nil
}

// RestoreDrafts loads saved drafts into c. It reports false when nothing was saved.
func (p *Publisher) RestoreDrafts(c *composer.Composer) (bool, error) {
	if c == nil {
		return false, shared.ErrNotLoaded
	}
	if p.drafts == nil {
		return false, nil
	}

	d, err := p.drafts.Load()
	if errors.Is(err, shared.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if d.Empty() {
		return false, nil
	}

	if skipped := c.Restore(*d); len(skipped) > 0 {
		p.logger.Warn("saved drafts reference unavailable platforms", "platforms", skipped)
	}
	return true, nil
}

// Publish validates c, posts it and records the outcome.
//
// Validation errors are returned before any request is made and nothing is recorded.
// Otherwise the returned error is nil only when every platform succeeded.
func (p *Publisher) Publish(ctx context.Context, progress chan<- ProgressUpdate, c *composer.Composer) (*PublishResult, error) {
	if p.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}
	if c == nil {
		return nil, shared.ErrNotLoaded
	}

	sub, err := c.Prepare()
	if err != nil {
		return nil, err
	}
	p.sendProgress(progress, validatedUpdate(sub))

	resp, postErr := p.Send(ctx, sub)
	out := c.Complete(sub, resp, postErr)
	p.sendProgress(progress, submittedUpdate(out))

	result := p.Record(progress, c, out)
	return result, out.Err()
}

// Send posts a prepared submission to the backend without touching composer state.
func (p *Publisher) Send(ctx context.Context, sub *composer.Submission) (*models.PostResponse, error) {
	if p.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	p.logger.Debug("posting", "mode", sub.Mode, "platforms", sub.Platforms, "images", len(sub.Images))
	resp, err := sub.Send(ctx, p.backend)
	if err != nil {
		p.logger.Debug("post request failed", "error", err)
	}
	return resp, err
}

// Record stores out in history and saves or clears the drafts of c.
func (p *Publisher) Record(progress chan<- ProgressUpdate, c *composer.Composer, out composer.Outcome) *PublishResult {
	result := &PublishResult{Outcome: out}
	total := 2

	if p.history != nil {
		rec := NewRecord(out)
		if err := p.history.Create(rec); err != nil {
			p.logger.Warn("failed to record post history", "error", err)
		} else {
			result.Record = rec
			p.sendProgress(progress, recordUpdate(1, total, fmt.Sprintf("Recorded post %s", rec.ID())))
		}
	}

	if p.drafts == nil {
		return result
	}

	if out.State == composer.Success {
		if err := p.drafts.Clear(); err != nil {
			p.logger.Warn("failed to clear saved drafts", "error", err)
		}
		p.sendProgress(progress, recordUpdate(2, total, "Cleared saved drafts"))
		return result
	}

	if err := p.drafts.Save(c.Snapshot()); err != nil {
		p.logger.Warn("failed to save drafts", "error", err)
		return result
	}
	result.DraftsSaved = true
	p.sendProgress(progress, recordUpdate(2, total, "Drafts saved for retry"))
	return result
}

// NewRecord converts an outcome into a history record.
//
// Platforms missing from the per-platform results take the overall state and message.
func NewRecord(out composer.Outcome) *models.PostRecord {
	outcomes := make([]models.PlatformOutcome, 0, len(out.Platforms))
	for _, id := range out.Platforms {
		o := models.PlatformOutcome{Platform: id, Content: out.Request[id].Content}
		if r, ok := out.Results[id]; ok {
			o.Success = r.Success
			o.Error = r.Error
		} else {
			o.Success = out.State == composer.Success
			if !o.Success {
				o.Error = out.Message
			}
		}
		outcomes = append(outcomes, o)
	}

	return models.NewPostRecord(out.Mode, statusOf(out.State), out.Message, outcomes)
}

func statusOf(s composer.State) models.PostStatus {
	switch s {
	case composer.Success:
		return models.StatusSuccess
	case composer.PartialFailure:
		return models.StatusPartialFailure
	default:
		return models.StatusFailure
	}
}
