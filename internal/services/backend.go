package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// APIError is returned for a non-2xx response. Message carries the body's "error" field when present.
type APIError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s returned status %d: %s", shared.ErrAPIRequest, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %s returned status %d", shared.ErrAPIRequest, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// BackendService is the typed client for the posting backend.
type BackendService struct {
	api *APIService
}

// NewBackendService creates a [BackendService] over api.
func NewBackendService(api *APIService) *BackendService {
	return &BackendService{api: api}
}

// Platforms fetches the platform catalog from /api/platforms.
func (b *BackendService) Platforms(ctx context.Context) (map[string]models.PlatformInfo, error) {
	var out map[string]models.PlatformInfo
	if err := b.getJSON(ctx, PlatformsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CharacterLimits fetches the limit table from /api/character_limits.
func (b *BackendService) CharacterLimits(ctx context.Context) (models.CharacterLimits, error) {
	var out models.CharacterLimits
	if err := b.getJSON(ctx, CharacterLimitsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Post submits req to /api/post as JSON.
//
// On a non-2xx status the decoded body (if any) is returned alongside an [*APIError].
func (b *BackendService) Post(ctx context.Context, req models.PostRequest) (*models.PostResponse, error) {
	return b.PostWithImages(ctx, req, nil)
}

// PostWithImages submits req with images attached.
//
// With no images this is a plain JSON post. Otherwise the body is multipart/form-data
// with req in the postData field and one imageN file part per image.
func (b *BackendService) PostWithImages(ctx context.Context, req models.PostRequest, images []models.Image) (*models.PostResponse, error) {
	if len(images) > models.MaxImages {
		return nil, fmt.Errorf("%w: %d attached, at most %d", shared.ErrTooManyImages, len(images), models.MaxImages)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode post: %v", shared.ErrInvalidInput, err)
	}

	contentType := "application/json"
	if len(images) > 0 {
		if data, contentType, err = encodeMultipart(data, images); err != nil {
			return nil, fmt.Errorf("%w: failed to encode images: %v", shared.ErrInvalidInput, err)
		}
	}

	resp, err := b.api.PostBody(ctx, PostPath, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var out models.PostResponse
	decodeErr := json.Unmarshal(resp.Body, &out)

	if !resp.OK() {
		apiErr := &APIError{Path: PostPath, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			out.Normalize()
			apiErr.Message = out.Error
			return &out, apiErr
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, PostPath, decodeErr)
	}

	out.Normalize()
	return &out, nil
}

func encodeMultipart(postData []byte, images []models.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField(models.PostDataField, string(postData)); err != nil {
		return nil, "", err
	}
	for i, img := range images {
		part, err := mw.CreateFormFile(fmt.Sprintf("%s%d", models.ImageFieldPrefix, i), filepath.Base(img.Name))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (b *BackendService) getJSON(ctx context.Context, path string, target any) error {
	resp, err := b.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body, &body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, path, err)
	}

	return nil
}
