package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
	tu "github.com/desertthunder/crosspost/internal/testing"
)

type mockHistory struct {
	records   []*models.PostRecord
	createErr error
}

func (m *mockHistory) Create(post *models.PostRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	post.SetID(fmt.Sprintf("post-%d", len(m.records)+1))
	m.records = append(m.records, post)
	return nil
}

type mockDrafts struct {
	saved   *models.DraftSet
	cleared int
	saveErr error
	loadErr error
}

func (m *mockDrafts) Save(d models.DraftSet) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &d
	return nil
}

func (m *mockDrafts) Load() (*models.DraftSet, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, shared.ErrRecordNotFound
	}
	return m.saved, nil
}

func (m *mockDrafts) Clear() error {
	m.cleared++
	m.saved = nil
	return nil
}

func newPublisher(backend *tu.MockBackend, history *mockHistory, drafts *mockDrafts) (*Publisher, *bytes.Buffer) {
	var buf bytes.Buffer
	var h HistoryStore
	if history != nil {
		h = history
	}
	var d DraftStore
	if drafts != nil {
		d = drafts
	}
	return NewPublisher(backend, h, d, shared.NewLogger(&buf)), &buf
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			p, _ := newPublisher(tu.NewMockBackend(), nil, nil)
			progress := make(chan ProgressUpdate, 10)

			c, err := p.Load(ctx, progress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Catalog().Len() != 5 {
				t.Errorf("expected 5 platforms, got %d", c.Catalog().Len())
			}

			updates := drain(progress)
			if len(updates) != 2 {
				t.Fatalf("expected 2 updates, got %d", len(updates))
			}
			if updates[1].Message != "Loaded 5 platforms (4 enabled)" {
				t.Errorf("unexpected message: %s", updates[1].Message)
			}
		})

		t.Run("Failure", func(t *testing.T) {
			backend := tu.NewMockBackend()
			backend.LoadErr = errors.New("refused")
			p, _ := newPublisher(backend, nil, nil)

			if _, err := p.Load(ctx, nil); !errors.Is(err, shared.ErrLoad) {
				t.Errorf("expected ErrLoad, got %v", err)
			}
		})

		t.Run("No Backend", func(t *testing.T) {
			p := NewPublisher(nil, nil, nil, nil)
			if _, err := p.Load(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Publish", func(t *testing.T) {
		t.Run("Success Records And Clears Drafts", func(t *testing.T) {
			backend := tu.NewMockBackend()
			history := &mockHistory{}
			drafts := &mockDrafts{saved: &models.DraftSet{Unified: "old"}}
			p, _ := newPublisher(backend, history, drafts)

			c, _ := p.Load(ctx, nil)
			c.SetUnifiedText("hello world")

			progress := make(chan ProgressUpdate, 10)
			res, err := p.Publish(ctx, progress, c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Outcome.State != composer.Success {
				t.Errorf("expected Success, got %v", res.Outcome.State)
			}
			if len(history.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(history.records))
			}
			rec := history.records[0]
			if rec.Status() != models.StatusSuccess {
				t.Errorf("expected success status, got %s", rec.Status())
			}
			if len(rec.Outcomes()) != 4 {
				t.Errorf("expected 4 outcomes, got %d", len(rec.Outcomes()))
			}
			if drafts.cleared != 1 {
				t.Errorf("expected drafts to be cleared once, got %d", drafts.cleared)
			}
			if res.DraftsSaved {
				t.Error("drafts should not be saved on success")
			}

			var phases []string
			for _, u := range drain(progress) {
				phases = append(phases, u.Phase.String())
			}
			if strings.Join(phases, ",") != "validate,submit,record,record" {
				t.Errorf("unexpected phases: %v", phases)
			}
		})

		t.Run("Partial Failure Saves Drafts", func(t *testing.T) {
			backend := tu.NewMockBackend()
			backend.Response = &models.PostResponse{
				Success: false,
				Results: map[string]models.PlatformResult{
					"bluesky":  {Success: true},
					"mastodon": {Success: false, Error: "rate limited"},
				},
			}
			history := &mockHistory{}
			drafts := &mockDrafts{}
			p, _ := newPublisher(backend, history, drafts)

			c, _ := p.Load(ctx, nil)
			c.SelectOnly("bluesky", "mastodon")
			c.SetUnifiedText("hello")

			res, err := p.Publish(ctx, nil, c)
			if !errors.Is(err, shared.ErrPartialFailure) {
				t.Fatalf("expected ErrPartialFailure, got %v", err)
			}
			if !res.DraftsSaved || drafts.saved == nil {
				t.Fatal("expected drafts to be saved")
			}
			if drafts.saved.Unified != "hello" {
				t.Errorf("expected saved unified text, got %q", drafts.saved.Unified)
			}
			rec := history.records[0]
			if rec.Status() != models.StatusPartialFailure {
				t.Errorf("expected partial failure status, got %s", rec.Status())
			}
			for _, o := range rec.Outcomes() {
				if o.Platform == "mastodon" && o.Error != "rate limited" {
					t.Errorf("expected mastodon error, got %q", o.Error)
				}
			}
		})

		t.Run("Validation Error Skips Network", func(t *testing.T) {
			backend := tu.NewMockBackend()
			history := &mockHistory{}
			p, _ := newPublisher(backend, history, &mockDrafts{})

			c, _ := p.Load(ctx, nil)
			_, err := p.Publish(ctx, nil, c)
			if !errors.Is(err, shared.ErrEmptyContent) {
				t.Errorf("expected ErrEmptyContent, got %v", err)
			}
			if backend.Calls() != 0 {
				t.Error("expected no network call")
			}
			if len(history.records) != 0 {
				t.Error("expected nothing recorded")
			}
		})

		t.Run("History Failure Is Logged", func(t *testing.T) {
			backend := tu.NewMockBackend()
			history := &mockHistory{createErr: errors.New("disk full")}
			p, buf := newPublisher(backend, history, nil)

			c, _ := p.Load(ctx, nil)
			c.SetUnifiedText("hello")

			res, err := p.Publish(ctx, nil, c)
			if err != nil {
				t.Fatalf("post should succeed despite history failure: %v", err)
			}
			if res.Record != nil {
				t.Error("expected no record")
			}
			if !strings.Contains(buf.String(), "failed to record post history") {
				t.Errorf("expected warning in log, got %q", buf.String())
			}
		})

		t.Run("Not Loaded", func(t *testing.T) {
			p, _ := newPublisher(tu.NewMockBackend(), nil, nil)
			if _, err := p.Publish(ctx, nil, nil); !errors.Is(err, shared.ErrNotLoaded) {
				t.Errorf("expected ErrNotLoaded, got %v", err)
			}
		})

		t.Run("Sends Images", func(t *testing.T) {
			backend := tu.NewMockBackend()
			p, _ := newPublisher(backend, nil, nil)

			c, _ := p.Load(ctx, nil)
			c.SetUnifiedText("with a picture")
			if err := c.AttachImage(models.Image{Name: "cat.png", Data: []byte("png")}); err != nil {
				t.Fatal(err)
			}

			if _, err := p.Publish(ctx, nil, c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(backend.Images) != 1 || len(backend.Images[0]) != 1 || backend.Images[0][0].Name != "cat.png" {
				t.Errorf("expected cat.png to be sent, got %v", backend.Images)
			}
			if len(c.Images()) != 0 {
				t.Error("expected images cleared after success")
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			backend := tu.NewMockBackend()
			backend.Response = nil
			backend.PostErr = errors.New("connection reset")
			history := &mockHistory{}
			p, _ := newPublisher(backend, history, &mockDrafts{})

			c, _ := p.Load(ctx, nil)
			c.SetUnifiedText("hello")

			_, err := p.Publish(ctx, nil, c)
			if !errors.Is(err, shared.ErrSubmitFailed) {
				t.Fatalf("expected ErrSubmitFailed, got %v", err)
			}
			for _, o := range history.records[0].Outcomes() {
				if o.Success || o.Error != composer.FallbackMessage {
					t.Errorf("expected fallback failure for %s, got %+v", o.Platform, o)
				}
			}
		})
	})

	t.Run("RestoreDrafts", func(t *testing.T) {
		t.Run("Nothing Saved", func(t *testing.T) {
			p, _ := newPublisher(tu.NewMockBackend(), nil, &mockDrafts{})
			c, _ := p.Load(ctx, nil)

			ok, err := p.RestoreDrafts(c)
			if err != nil || ok {
				t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
			}
		})

		t.Run("Restores Text", func(t *testing.T) {
			drafts := &mockDrafts{saved: &models.DraftSet{
				Mode:      models.Individual,
				Platforms: []string{"x", "threads"},
				Drafts:    map[string]string{"x": "tweet"},
			}}
			p, buf := newPublisher(tu.NewMockBackend(), nil, drafts)
			c, _ := p.Load(ctx, nil)

			ok, err := p.RestoreDrafts(c)
			if err != nil || !ok {
				t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
			}
			if c.Text("x") != "tweet" {
				t.Errorf("expected restored draft, got %q", c.Text("x"))
			}
			if !strings.Contains(buf.String(), "unavailable platforms") {
				t.Error("expected warning about disabled platform")
			}
		})

		t.Run("Not Loaded", func(t *testing.T) {
			p, _ := newPublisher(tu.NewMockBackend(), nil, &mockDrafts{})
			if _, err := p.RestoreDrafts(nil); !errors.Is(err, shared.ErrNotLoaded) {
				t.Errorf("expected ErrNotLoaded, got %v", err)
			}
		})

		t.Run("Load Error", func(t *testing.T) {
			p, _ := newPublisher(tu.NewMockBackend(), nil, &mockDrafts{loadErr: errors.New("locked")})
			c, _ := p.Load(ctx, nil)

			if _, err := p.RestoreDrafts(c); err == nil {
				t.Error("expected error")
			}
		})
	})
}

func TestNewRecord(t *testing.T) {
	out := composer.Outcome{
		State:     composer.Failure,
		Mode:      models.Individual,
		Platforms: []string{"x", "bluesky"},
		Request: models.PostRequest{
			"x":       {Selected: true, Content: "tweet"},
			"bluesky": {Selected: true, Content: "skeet"},
		},
		Results: map[string]models.PlatformResult{"x": {Success: false, Error: "auth"}},
		Message: "post failed",
	}

	rec := NewRecord(out)
	if rec.Mode() != models.Individual {
		t.Errorf("expected individual mode, got %v", rec.Mode())
	}
	if rec.Status() != models.StatusFailure {
		t.Errorf("expected failure status, got %s", rec.Status())
	}

	got := rec.Outcomes()
	if len(got) != 2 || got[0].Platform != "bluesky" || got[1].Platform != "x" {
		t.Fatalf("expected outcomes sorted by platform, got %+v", got)
	}
	if got[0].Error != "post failed" || got[0].Content != "skeet" {
		t.Errorf("expected fallback for missing result, got %+v", got[0])
	}
	if got[1].Error != "auth" {
		t.Errorf("expected reported error, got %+v", got[1])
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		LoadCatalog: "load_catalog",
		Validate:    "validate",
		Submit:      "submit",
		Record:      "record",
		Phase(99):   "",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
