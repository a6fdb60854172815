package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func newBackend(t *testing.T, h http.HandlerFunc) *BackendService {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewBackendService(NewAPIService(server.URL, server.Client()))
}

func TestBackendService(t *testing.T) {
	t.Run("Platforms", func(t *testing.T) {
		t.Run("Decodes Catalog", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != PlatformsPath {
					t.Errorf("expected path %s, got %s", PlatformsPath, r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"bluesky":{"enabled":true,"limit":300},"threads":{"enabled":false,"limit":500}}`))
			})

			got, err := b.Platforms(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := map[string]models.PlatformInfo{
				"bluesky": {Enabled: true, Limit: 300},
				"threads": {Enabled: false, Limit: 500},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("platforms mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"error":"down for maintenance"}`))
			})

			_, err := b.Platforms(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("expected status 503, got %d", apiErr.StatusCode)
			}
			if apiErr.Message != "down for maintenance" {
				t.Errorf("expected server message, got %q", apiErr.Message)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to wrap ErrAPIRequest")
			}
		})

		t.Run("Malformed JSON", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			})

			_, err := b.Platforms(context.Background())
			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			url := server.URL
			server.Close()

			b := NewBackendService(NewAPIService(url, nil))
			_, err := b.Platforms(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("CharacterLimits", func(t *testing.T) {
		b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != CharacterLimitsPath {
				t.Errorf("expected path %s, got %s", CharacterLimitsPath, r.URL.Path)
			}
			w.Write([]byte(`{"x":280,"mastodon":500}`))
		})

		got, err := b.CharacterLimits(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(models.CharacterLimits{"x": 280, "mastodon": 500}, got); diff != "" {
			t.Errorf("limits mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends Request Body", func(t *testing.T) {
			var received models.PostRequest
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &received); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				w.Write([]byte(`{"success":true,"results":{"x":{"success":true}}}`))
			})

			req := models.PostRequest{"x": {Selected: true, Content: "hello"}}
			resp, err := b.Post(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !resp.Success {
				t.Error("expected success")
			}
			if diff := cmp.Diff(req, received); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("Partial Failure", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false,"results":{"x":{"success":true},"mastodon":{"success":false,"error":"rate limited"}}}`))
			})

			resp, err := b.Post(context.Background(), models.PostRequest{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Results["mastodon"].Error != "rate limited" {
				t.Errorf("expected mastodon error, got %+v", resp.Results["mastodon"])
			}
		})

		t.Run("Flattened Response", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"platform":"bluesky","success":false,"error":"session expired"}`))
			})

			resp, err := b.Post(context.Background(), models.PostRequest{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := map[string]models.PlatformResult{"bluesky": {Success: false, Error: "session expired"}}
			if diff := cmp.Diff(want, resp.Results); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
			if resp.Platform != "" {
				t.Errorf("expected platform to be cleared, got %q", resp.Platform)
			}
		})

		t.Run("Error Status With Body", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"success":false,"error":"no platforms selected"}`))
			})

			resp, err := b.Post(context.Background(), models.PostRequest{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Message != "no platforms selected" {
				t.Errorf("expected server message, got %q", apiErr.Message)
			}
			if resp == nil || resp.Error != "no platforms selected" {
				t.Errorf("expected decoded body to be returned, got %+v", resp)
			}
		})

		t.Run("Error Status Without Body", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})

			resp, err := b.Post(context.Background(), models.PostRequest{})
			if resp != nil {
				t.Errorf("expected nil response, got %+v", resp)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Message != "" {
				t.Errorf("expected empty message, got %q", apiErr.Message)
			}
		})

		t.Run("Sends Images As Multipart", func(t *testing.T) {
			var (
				received models.PostRequest
				files    = map[string]string{}
			)
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("expected multipart body: %v", err)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if err := json.Unmarshal([]byte(r.FormValue(models.PostDataField)), &received); err != nil {
					t.Errorf("failed to decode postData: %v", err)
				}
				for field, headers := range r.MultipartForm.File {
					f, _ := headers[0].Open()
					data, _ := io.ReadAll(f)
					f.Close()
					files[field] = headers[0].Filename + ":" + string(data)
				}
				w.Write([]byte(`{"success":true,"results":{"x":{"success":true}}}`))
			})

			req := models.PostRequest{"x": {Selected: true, Content: "look"}}
			images := []models.Image{
				{Name: "/tmp/photos/cat.png", Data: []byte("meow")},
				{Name: "dog.jpg", Data: []byte("woof")},
			}
			if _, err := b.PostWithImages(context.Background(), req, images); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(req, received); diff != "" {
				t.Errorf("postData mismatch (-want +got):\n%s", diff)
			}
			want := map[string]string{"image0": "cat.png:meow", "image1": "dog.jpg:woof"}
			if diff := cmp.Diff(want, files); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("Too Many Images", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			})

			images := make([]models.Image, models.MaxImages+1)
			for i := range images {
				images[i] = models.Image{Name: "a.png", Data: []byte("a")}
			}
			if _, err := b.PostWithImages(context.Background(), models.PostRequest{}, images); !errors.Is(err, shared.ErrTooManyImages) {
				t.Errorf("expected ErrTooManyImages, got %v", err)
			}
		})

		t.Run("Malformed Success Body", func(t *testing.T) {
			b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			})

			_, err := b.Post(context.Background(), models.PostRequest{})
			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("Bearer Token", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewHTTPClient(context.Background(), shared.APIConfig{Token: "secret"})
		b := NewBackendService(NewAPIService(server.URL, client))
		if _, err := b.CharacterLimits(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", auth)
		}
	})

	t.Run("No Token", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewHTTPClient(context.Background(), shared.APIConfig{})
		if _, err := NewAPIService(server.URL, client).Get(context.Background(), "/"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth != "" {
			t.Errorf("expected no authorization header, got %q", auth)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		client := NewHTTPClient(context.Background(), shared.APIConfig{Timeout: shared.Duration{Duration: 2 * time.Second}})
		if client.Timeout != 2*time.Second {
			t.Errorf("expected 2s timeout, got %v", client.Timeout)
		}
	})
}
