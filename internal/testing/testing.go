// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/crosspost/internal/models"
)

// MockBackend is a test double for the posting backend.
//
// It satisfies the catalog source and poster interfaces used by the composer and records every post it receives.
type MockBackend struct {
	Catalog   map[string]models.PlatformInfo
	Limits    models.CharacterLimits
	Response  *models.PostResponse
	PostErr   error
	LoadErr   error
	LimitsErr error
	Requests  []models.PostRequest
	Images    [][]models.Image // attachments per request, nil for plain posts

	mu sync.Mutex
}

// NewMockBackend returns a backend seeded with the default sandbox catalog and a successful post response.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Catalog: map[string]models.PlatformInfo{
			"bluesky":  {Enabled: true, Limit: 300},
			"mastodon": {Enabled: true, Limit: 500},
			"misskey":  {Enabled: true, Limit: 3000},
			"threads":  {Enabled: false, Limit: 500},
			"x":        {Enabled: true, Limit: 280},
		},
		Limits: models.CharacterLimits{
			"bluesky":  300,
			"mastodon": 500,
			"misskey":  3000,
			"threads":  500,
			"x":        280,
		},
		Response: &models.PostResponse{Success: true},
	}
}

func (m *MockBackend) Platforms(ctx context.Context) (map[string]models.PlatformInfo, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Catalog, nil
}

func (m *MockBackend) CharacterLimits(ctx context.Context) (models.CharacterLimits, error) {
	if m.LimitsErr != nil {
		return nil, m.LimitsErr
	}
	return m.Limits, nil
}

func (m *MockBackend) Post(ctx context.Context, req models.PostRequest) (*models.PostResponse, error) {
	return m.PostWithImages(ctx, req, nil)
}

func (m *MockBackend) PostWithImages(ctx context.Context, req models.PostRequest, images []models.Image) (*models.PostResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.Images = append(m.Images, images)
	m.mu.Unlock()
	return m.Response, m.PostErr
}

// Calls returns the number of posts received.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
