package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

const (
	platformsRoute = "/api/platforms"
	limitsRoute    = "/api/character_limits"
	postRoute      = "/api/post"
)

const maxUploadBytes = 32 << 20

var errNoData = errors.New("no data sent")

// SandboxHandler serves the three backend endpoints from configuration without posting anywhere.
//
// A post succeeds for every selected, enabled platform whose content is non-blank and within
// its limit, unless the platform is listed in the configured failures.
type SandboxHandler struct {
	platforms map[string]shared.SandboxPlatform
	fail      map[string]string
	logger    *log.Logger
}

// NewSandboxHandler creates a handler over cfg.
func NewSandboxHandler(cfg shared.SandboxConfig, logger *log.Logger) *SandboxHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SandboxHandler{platforms: cfg.Platforms, fail: cfg.Fail, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SandboxHandler) Routes() []string {
	return []string{platformsRoute, limitsRoute, postRoute}
}

// ServeHTTP dispatches on path and method.
func (h *SandboxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == platformsRoute && r.Method == http.MethodGet:
		h.platformsHandler(w)
	case r.URL.Path == limitsRoute && r.Method == http.MethodGet:
		h.limitsHandler(w)
	case r.URL.Path == postRoute && r.Method == http.MethodPost:
		h.postHandler(w, r)
	case r.URL.Path == platformsRoute || r.URL.Path == limitsRoute || r.URL.Path == postRoute:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *SandboxHandler) platformsHandler(w http.ResponseWriter) {
	out := make(map[string]models.PlatformInfo, len(h.platforms))
	for id, p := range h.platforms {
		out[id] = models.PlatformInfo{Enabled: p.Enabled, Limit: p.Limit}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SandboxHandler) limitsHandler(w http.ResponseWriter) {
	out := make(models.CharacterLimits, len(h.platforms))
	for id, p := range h.platforms {
		out[id] = p.Limit
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SandboxHandler) postHandler(w http.ResponseWriter, r *http.Request) {
	req, images, err := decodePost(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.PostResponse{Error: err.Error()})
		return
	}

	results := make(map[string]models.PlatformResult)
	for id, entry := range req {
		if !entry.Selected {
			continue
		}
		results[id] = h.post(id, entry.Content, images)
	}

	if len(results) == 0 {
		writeJSON(w, http.StatusBadRequest, models.PostResponse{Error: "no platforms selected"})
		return
	}

	allOK := true
	for _, res := range results {
		allOK = allOK && res.Success
	}

	// single-platform replies are flattened
	if len(results) == 1 {
		for id, res := range results {
			writeJSON(w, http.StatusOK, models.PostResponse{Platform: id, Success: res.Success, Error: res.Error})
		}
		return
	}

	writeJSON(w, http.StatusOK, models.PostResponse{Success: allOK, Results: results})
}

// decodePost reads a JSON body, or a multipart form carrying the JSON in postData plus
// imageN file parts. It returns the request and the number of attached images.
func decodePost(r *http.Request) (models.PostRequest, int, error) {
	var req models.PostRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req) == 0 {
			return nil, 0, errNoData
		}
		return req, 0, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, 0, fmt.Errorf("invalid form: %v", err)
	}
	postData := r.FormValue(models.PostDataField)
	if postData == "" {
		return nil, 0, fmt.Errorf("missing %s", models.PostDataField)
	}
	if err := json.Unmarshal([]byte(postData), &req); err != nil || len(req) == 0 {
		return nil, 0, errNoData
	}

	images := 0
	for field, files := range r.MultipartForm.File {
		if strings.HasPrefix(field, models.ImageFieldPrefix) {
			images += len(files)
		}
	}
	if images > models.MaxImages {
		return nil, 0, fmt.Errorf("at most %d images per post, got %d", models.MaxImages, images)
	}
	return req, images, nil
}

func (h *SandboxHandler) post(id, content string, images int) models.PlatformResult {
	p, ok := h.platforms[id]
	switch {
	case !ok:
		return models.PlatformResult{Error: fmt.Sprintf("unknown platform %s", id)}
	case !p.Enabled:
		return models.PlatformResult{Error: fmt.Sprintf("%s client is not configured", shared.DisplayName(id))}
	case shared.IsBlank(content):
		return models.PlatformResult{Error: "content is empty"}
	case shared.CharCount(content) > p.Limit:
		return models.PlatformResult{Error: fmt.Sprintf("content exceeds %d characters", p.Limit)}
	}

	if msg, ok := h.fail[id]; ok {
		h.logger.Debug("simulated failure", "platform", id, "error", msg)
		return models.PlatformResult{Error: msg}
	}

	h.logger.Info("posted", "platform", id, "chars", shared.CharCount(content), "images", images)
	return models.PlatformResult{Success: true}
}

// NewSandboxRouter wires the sandbox handler behind logging, auth and rate limiting.
func NewSandboxRouter(cfg shared.SandboxConfig, token string, rps float64, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Logging(logger), BearerAuth(token), RateLimit(rps))
	r.Handler(NewSandboxHandler(cfg, logger))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
