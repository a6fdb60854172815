package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// FallbackMessage is reported when a failed post carries no server message.
const FallbackMessage = "post failed"

// Poster sends a post request to the backend.
type Poster interface {
	Post(ctx context.Context, req models.PostRequest) (*models.PostResponse, error)
}

// ImagePoster is a [Poster] that can also attach images to a post.
type ImagePoster interface {
	Poster
	PostWithImages(ctx context.Context, req models.PostRequest, images []models.Image) (*models.PostResponse, error)
}

// Submission is a validated request ready to send.
type Submission struct {
	Mode      models.PostMode
	Platforms []string
	Request   models.PostRequest
	Images    []models.Image
}

// Send posts s through p, attaching images when there are any.
// A poster that cannot take images fails with [shared.ErrServiceUnavailable].
func (s *Submission) Send(ctx context.Context, p Poster) (*models.PostResponse, error) {
	if len(s.Images) == 0 {
		return p.Post(ctx, s.Request)
	}
	ip, ok := p.(ImagePoster)
	if !ok {
		return nil, fmt.Errorf("%w: backend does not accept images", shared.ErrServiceUnavailable)
	}
	return ip.PostWithImages(ctx, s.Request, s.Images)
}

// Outcome is the interpreted result of a submission.
type Outcome struct {
	State     State
	Mode      models.PostMode
	Platforms []string
	Request   models.PostRequest
	Results   map[string]models.PlatformResult
	Message   string
	Cause     error // transport or HTTP error, if any
}

// Err returns nil for [Success] and a wrapped [shared.ErrPartialFailure] or [shared.ErrSubmitFailed] otherwise.
func (o Outcome) Err() error {
	switch o.State {
	case Success:
		return nil
	case PartialFailure:
		return fmt.Errorf("%w: %s", shared.ErrPartialFailure, o.describeFailures())
	default:
		if o.Message == "" || o.Message == FallbackMessage {
			if o.Cause != nil {
				return fmt.Errorf("%w: %v", shared.ErrSubmitFailed, o.Cause)
			}
			return shared.ErrSubmitFailed
		}
		return fmt.Errorf("%w: %s", shared.ErrSubmitFailed, o.Message)
	}
}

func (o Outcome) describeFailures() string {
	failed := o.Failed()
	parts := make([]string, 0, len(failed))
	for _, id := range failed {
		msg := o.Results[id].Error
		if msg == "" {
			msg = FallbackMessage
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", shared.DisplayName(id), msg))
	}
	return strings.Join(parts, ", ")
}

// Succeeded lists submitted platforms reported as successful, in submission order.
func (o Outcome) Succeeded() []string {
	var ids []string
	for _, id := range o.Platforms {
		if r, ok := o.Results[id]; ok && r.Success {
			ids = append(ids, id)
		}
	}
	return ids
}

// Failed lists submitted platforms reported as failed, in submission order.
// Platforms missing from the results are not listed.
func (o Outcome) Failed() []string {
	var ids []string
	for _, id := range o.Platforms {
		if r, ok := o.Results[id]; ok && !r.Success {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate runs the submission guards without changing state.
func (c *Composer) Validate() (*Submission, error) {
	if c.state == Submitting {
		return nil, shared.ErrSubmitInProgress
	}

	active := c.ActivePlatforms()
	if len(active) == 0 {
		return nil, shared.ErrNoPlatformSelected
	}

	if c.mode == models.Unified {
		if shared.IsBlank(c.unified) {
			return nil, &PlatformError{Platform: active[0], Err: shared.ErrEmptyContent}
		}
	} else {
		for _, id := range active {
			if shared.IsBlank(c.drafts[id]) {
				return nil, &PlatformError{Platform: id, Err: shared.ErrEmptyContent}
			}
		}
	}

	req := make(models.PostRequest, len(active))
	for _, id := range active {
		limit, err := c.LimitFor(id)
		if err != nil {
			return nil, err
		}
		text := c.Text(id)
		if n := shared.CharCount(text); n > limit {
			return nil, &PlatformError{
				Platform: id,
				Err:      fmt.Errorf("%w: %d/%d", shared.ErrExceedsLimit, n, limit),
			}
		}
		req[id] = models.PostEntry{Selected: true, Content: text}
	}

	return &Submission{Mode: c.mode, Platforms: active, Request: req, Images: c.Images()}, nil
}

// Prepare validates the composer and moves it to [Submitting].
// While submitting, further calls fail with [shared.ErrSubmitInProgress].
func (c *Composer) Prepare() (*Submission, error) {
	sub, err := c.Validate()
	if err != nil {
		return nil, err
	}
	c.state = Submitting
	return sub, nil
}

// Complete interprets the backend reply to sub and returns the composer to [Idle].
//
// A fully successful post clears the drafts of the submitted platforms, and the
// unified text when it was a unified post. Any failure keeps every draft.
func (c *Composer) Complete(sub *Submission, resp *models.PostResponse, err error) Outcome {
	defer func() { c.state = Idle }()

	out := Outcome{State: Failure, Cause: err}
	if sub != nil {
		out.Mode = sub.Mode
		out.Platforms = sub.Platforms
		out.Request = sub.Request
	}
	if resp != nil {
		resp.Normalize()
		out.Results = resp.Results
		out.Message = resp.Error
	}

	switch {
	case err != nil || resp == nil:
		if out.Message == "" {
			out.Message = FallbackMessage
		}
	case resp.Success:
		out.State = Success
		c.clearSubmitted(sub)
	default:
		for _, r := range resp.Results {
			if r.Success {
				out.State = PartialFailure
				break
			}
		}
		if out.State == Failure && out.Message == "" {
			out.Message = FallbackMessage
		}
	}

	return out
}

func (c *Composer) clearSubmitted(sub *Submission) {
	if sub == nil {
		return
	}
	for _, id := range sub.Platforms {
		delete(c.drafts, id)
	}
	if sub.Mode == models.Unified {
		c.unified = ""
	}
	c.images = nil
}

// Submit validates, posts and interprets the reply in one call.
// The error is nil only when every platform succeeded.
func (c *Composer) Submit(ctx context.Context, p Poster) (Outcome, error) {
	sub, err := c.Prepare()
	if err != nil {
		return Outcome{State: Idle}, err
	}

	resp, err := sub.Send(ctx, p)
	out := c.Complete(sub, resp, err)
	return out, out.Err()
}
