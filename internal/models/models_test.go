package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCatalog(t *testing.T) {
	info := map[string]PlatformInfo{
		"twitter":  {Enabled: true, Limit: 280},
		"mastodon": {Enabled: true, Limit: 500},
		"linkedin": {Enabled: false, Limit: 3000},
	}

	t.Run("NewCatalog sorts by identifier", func(t *testing.T) {
		c, err := NewCatalog(info)
		if err != nil {
			t.Fatalf("NewCatalog() error = %v", err)
		}

		if diff := cmp.Diff([]string{"linkedin", "mastodon", "twitter"}, c.IDs()); diff != "" {
			t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"mastodon", "twitter"}, c.Enabled()); diff != "" {
			t.Errorf("Enabled() mismatch (-want +got):\n%s", diff)
		}
		if c.Len() != 3 {
			t.Errorf("Len() = %d, want 3", c.Len())
		}
	})

	t.Run("Get and Position", func(t *testing.T) {
		c, _ := NewCatalog(info)

		p, ok := c.Get("twitter")
		if !ok || p.Limit != 280 || !p.Enabled {
			t.Errorf("Get(twitter) = %+v, %v", p, ok)
		}
		if _, ok := c.Get("myspace"); ok {
			t.Error("expected unknown platform lookup to fail")
		}
		if c.Position("mastodon") != 1 {
			t.Errorf("Position(mastodon) = %d, want 1", c.Position("mastodon"))
		}
		if c.Position("myspace") != -1 {
			t.Errorf("Position(myspace) = %d, want -1", c.Position("myspace"))
		}
	})

	t.Run("Platforms returns a copy", func(t *testing.T) {
		c, _ := NewCatalog(info)
		ps := c.Platforms()
		ps[0].Enabled = true

		if p, _ := c.Get("linkedin"); p.Enabled {
			t.Error("catalog must not be mutated through Platforms()")
		}
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		if _, err := NewCatalog(map[string]PlatformInfo{"x": {Enabled: true, Limit: 0}}); err == nil {
			t.Error("expected error for zero limit")
		}
		if _, err := NewCatalog(map[string]PlatformInfo{" ": {Enabled: true, Limit: 10}}); err == nil {
			t.Error("expected error for blank identifier")
		}
	})
}

func TestPostMode(t *testing.T) {
	tc := []struct {
		input   string
		want    PostMode
		wantErr bool
	}{
		{input: "unified", want: Unified},
		{input: "Individual", want: Individual},
		{input: "", want: Unified},
		{input: "thread", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePostMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePostMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePostMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if Individual.String() != "individual" || Unified.String() != "unified" {
		t.Error("unexpected PostMode.String() output")
	}
}

func TestPostResponse(t *testing.T) {
	t.Run("multi-platform response", func(t *testing.T) {
		body := `{"success": false, "results": {"twitter": {"success": true}, "mastodon": {"success": false, "error": "rate limited"}}}`

		var resp PostResponse
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		resp.Normalize()

		want := map[string]PlatformResult{
			"twitter":  {Success: true},
			"mastodon": {Success: false, Error: "rate limited"},
		}
		if diff := cmp.Diff(want, resp.Results); diff != "" {
			t.Errorf("Results mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("flattened single-platform response", func(t *testing.T) {
		body := `{"platform": "x", "success": false, "error": "X client is not configured"}`

		var resp PostResponse
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		resp.Normalize()

		if resp.Platform != "" {
			t.Errorf("expected Platform to be cleared, got %q", resp.Platform)
		}
		got, ok := resp.Results["x"]
		if !ok {
			t.Fatal("expected x result after normalization")
		}
		if got.Success || got.Error != "X client is not configured" {
			t.Errorf("unexpected x result %+v", got)
		}
	})

	t.Run("request encoding", func(t *testing.T) {
		req := PostRequest{"twitter": {Selected: true, Content: "hi"}}
		data, err := json.Marshal(req)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"twitter":{"selected":true,"content":"hi"}}` {
			t.Errorf("unexpected body %s", data)
		}
	})
}

func TestPostRecord(t *testing.T) {
	t.Run("sorts outcomes and counts successes", func(t *testing.T) {
		r := NewPostRecord(Unified, StatusPartialFailure, "", []PlatformOutcome{
			{Platform: "x", Content: "hi", Success: true},
			{Platform: "mastodon", Content: "hi", Success: false, Error: "rate limited"},
		})

		if r.Outcomes()[0].Platform != "mastodon" {
			t.Errorf("expected outcomes sorted by platform, got %s first", r.Outcomes()[0].Platform)
		}
		if r.Succeeded() != 1 {
			t.Errorf("Succeeded() = %d, want 1", r.Succeeded())
		}
		if err := r.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("Validate rejects bad records", func(t *testing.T) {
		if err := NewPostRecord(Unified, "weird", "", []PlatformOutcome{{Platform: "x"}}).Validate(); err == nil {
			t.Error("expected error for unknown status")
		}
		if err := NewPostRecord(Unified, StatusFailure, "", nil).Validate(); err == nil {
			t.Error("expected error for empty outcomes")
		}
	})

	t.Run("DraftSet Empty", func(t *testing.T) {
		var nilSet *DraftSet
		if !nilSet.Empty() {
			t.Error("nil draft set should be empty")
		}
		if (&DraftSet{Drafts: map[string]string{"x": ""}}).Empty() != true {
			t.Error("draft set with blank drafts should be empty")
		}
		if (&DraftSet{Drafts: map[string]string{"x": "hi"}}).Empty() {
			t.Error("draft set with text should not be empty")
		}
	})
}
