package models

import (
	"fmt"
	"sort"
	"time"
)

// PostStatus is the terminal state of a submission.
type PostStatus string

const (
	StatusSuccess        PostStatus = "success"
	StatusPartialFailure PostStatus = "partial_failure"
	StatusFailure        PostStatus = "failure"
)

var _ Model = (*PostRecord)(nil)

// PlatformOutcome is the stored result of one platform within a [PostRecord].
type PlatformOutcome struct {
	Platform string
	Content  string
	Success  bool
	Error    string
}

// PostRecord is a persisted submission attempt.
type PostRecord struct {
	id        string
	mode      PostMode
	status    PostStatus
	message   string
	outcomes  []PlatformOutcome
	createdAt time.Time
}

// NewPostRecord creates a record for a finished submission. Outcomes are sorted by platform.
func NewPostRecord(mode PostMode, status PostStatus, message string, outcomes []PlatformOutcome) *PostRecord {
	sorted := make([]PlatformOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Platform < sorted[j].Platform })

	return &PostRecord{
		mode:      mode,
		status:    status,
		message:   message,
		outcomes:  sorted,
		createdAt: time.Now().UTC(),
	}
}

// RestorePostRecord rebuilds a record loaded from storage.
func RestorePostRecord(id string, mode PostMode, status PostStatus, message string, outcomes []PlatformOutcome, createdAt time.Time) *PostRecord {
	r := NewPostRecord(mode, status, message, outcomes)
	r.id = id
	r.createdAt = createdAt
	return r
}

func (r *PostRecord) ID() string                  { return r.id }
func (r *PostRecord) SetID(id string)             { r.id = id }
func (r *PostRecord) CreatedAt() time.Time        { return r.createdAt }
func (r *PostRecord) Mode() PostMode              { return r.mode }
func (r *PostRecord) Status() PostStatus          { return r.status }
func (r *PostRecord) Message() string             { return r.message }
func (r *PostRecord) Outcomes() []PlatformOutcome { return r.outcomes }

// Validate checks the record can be stored.
func (r *PostRecord) Validate() error {
	switch r.status {
	case StatusSuccess, StatusPartialFailure, StatusFailure:
	default:
		return fmt.Errorf("invalid post status %q", r.status)
	}
	if len(r.outcomes) == 0 {
		return fmt.Errorf("post record has no platforms")
	}
	for _, o := range r.outcomes {
		if o.Platform == "" {
			return fmt.Errorf("post record has an outcome without platform")
		}
	}
	return nil
}

// Succeeded returns the number of platforms that accepted the post.
func (r *PostRecord) Succeeded() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// DraftSet is the draft text kept after a failed post, restored by `post --from-draft`.
type DraftSet struct {
	Mode      PostMode
	Platforms []string          // selected platforms at the time of saving
	Unified   string            // unified text
	Drafts    map[string]string // individual drafts by platform
	UpdatedAt time.Time
}

// Empty reports whether the set carries no text at all.
func (d *DraftSet) Empty() bool {
	if d == nil {
		return true
	}
	if d.Unified != "" {
		return false
	}
	for _, v := range d.Drafts {
		if v != "" {
			return false
		}
	}
	return true
}
