// package formatter renders catalogs, post outcomes and post history as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// Formats accepted by [FormatHistory].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

const timeLayout = "2006-01-02 15:04"

// CatalogToText lists every platform with its state and limit.
func CatalogToText(catalog *models.Catalog) []byte {
	var buf bytes.Buffer
	for _, p := range catalog.Platforms() {
		state := "enabled"
		if !p.Enabled {
			state = "disabled"
		}
		buf.WriteString(fmt.Sprintf("%-10s %-8s %5d\n", shared.DisplayName(p.ID), state, p.Limit))
	}
	return buf.Bytes()
}

// CatalogToJSON renders the catalog in the /api/platforms shape.
func CatalogToJSON(catalog *models.Catalog) ([]byte, error) {
	out := make(map[string]models.PlatformInfo, catalog.Len())
	for _, p := range catalog.Platforms() {
		out[p.ID] = models.PlatformInfo{Enabled: p.Enabled, Limit: p.Limit}
	}
	return shared.MarshalJSON(out, true)
}

// LimitsToText lists the character-limit table sorted by platform.
func LimitsToText(limits models.CharacterLimits) []byte {
	ids := make([]string, 0, len(limits))
	for id := range limits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(fmt.Sprintf("%-10s %5d\n", shared.DisplayName(id), limits[id]))
	}
	return buf.Bytes()
}

// OutcomeToText renders the per-platform result of a post.
func OutcomeToText(out composer.Outcome) []byte {
	var buf bytes.Buffer

	switch out.State {
	case composer.Success:
		buf.WriteString("Post succeeded\n")
	case composer.PartialFailure:
		buf.WriteString("Post failed on some platforms\n")
	default:
		buf.WriteString(fmt.Sprintf("Post failed: %s\n", out.Message))
	}

	for _, id := range out.Platforms {
		r, ok := out.Results[id]
		switch {
		case !ok:
			continue
		case r.Success:
			buf.WriteString(fmt.Sprintf("  ✓ %s\n", shared.DisplayName(id)))
		default:
			msg := r.Error
			if msg == "" {
				msg = composer.FallbackMessage
			}
			buf.WriteString(fmt.Sprintf("  ✗ %s (%s)\n", shared.DisplayName(id), msg))
		}
	}

	return buf.Bytes()
}

// OutcomeJSON is the serialized form of a [composer.Outcome].
type OutcomeJSON struct {
	State   string                           `json:"state"`
	Mode    string                           `json:"mode"`
	Message string                           `json:"message,omitempty"`
	Results map[string]models.PlatformResult `json:"results,omitempty"`
	PostID  string                           `json:"post_id,omitempty"`
}

// OutcomeToJSON serializes out. postID is the history record ID, if any.
func OutcomeToJSON(out composer.Outcome, postID string) ([]byte, error) {
	return shared.MarshalJSON(OutcomeJSON{
		State:   out.State.String(),
		Mode:    out.Mode.String(),
		Message: out.Message,
		Results: out.Results,
		PostID:  postID,
	}, true)
}

// RequestToJSON renders the request body that would be sent to /api/post.
func RequestToJSON(req models.PostRequest) ([]byte, error) {
	return shared.MarshalJSON(req, true)
}

// HistoryToCSV converts post history to CSV with one row per platform outcome.
func HistoryToCSV(posts []*models.PostRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Created", "Mode", "Status", "Platform", "Success", "Error", "Content"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, post := range posts {
		for _, o := range post.Outcomes() {
			record := []string{
				post.ID(),
				post.CreatedAt().UTC().Format(time.RFC3339),
				post.Mode().String(),
				string(post.Status()),
				o.Platform,
				strconv.FormatBool(o.Success),
				o.Error,
				o.Content,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown converts post history to Markdown, one section per post.
func HistoryToMarkdown(posts []*models.PostRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Post History\n\n")
	buf.WriteString(fmt.Sprintf("**Posts**: %d\n\n", len(posts)))

	for _, post := range posts {
		buf.WriteString(fmt.Sprintf("## %s (%s)\n\n", post.CreatedAt().UTC().Format(timeLayout), post.Status()))
		buf.WriteString(fmt.Sprintf("**Mode**: %s\n", post.Mode()))
		if post.Message() != "" {
			buf.WriteString(fmt.Sprintf("**Message**: %s\n", post.Message()))
		}
		buf.WriteString("\n")

		for _, o := range post.Outcomes() {
			mark := "x"
			if !o.Success {
				mark = " "
			}
			line := fmt.Sprintf("- [%s] **%s**", mark, shared.DisplayName(o.Platform))
			if o.Error != "" {
				line += fmt.Sprintf(" (%s)", o.Error)
			}
			buf.WriteString(line + "\n")
			for _, l := range strings.Split(o.Content, "\n") {
				buf.WriteString("  > " + l + "\n")
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// HistoryToText converts post history to a compact plain text listing.
func HistoryToText(posts []*models.PostRecord) ([]byte, error) {
	var buf bytes.Buffer

	if len(posts) == 0 {
		buf.WriteString("No posts yet\n")
		return buf.Bytes(), nil
	}

	for _, post := range posts {
		buf.WriteString(fmt.Sprintf("%s  %-15s %d/%d  %s\n",
			post.CreatedAt().UTC().Format(timeLayout),
			post.Status(),
			post.Succeeded(),
			len(post.Outcomes()),
			preview(post),
		))
		for _, o := range post.Outcomes() {
			if !o.Success && o.Error != "" {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", shared.DisplayName(o.Platform), o.Error))
			}
		}
	}

	return buf.Bytes(), nil
}

// preview is the first line of the first outcome's content, cut to 40 characters.
func preview(post *models.PostRecord) string {
	outcomes := post.Outcomes()
	if len(outcomes) == 0 {
		return ""
	}
	line, _, _ := strings.Cut(outcomes[0].Content, "\n")
	if shared.CharCount(line) > 40 {
		return shared.TruncateChars(line, 39) + "…"
	}
	return line
}

// PostJSON is the serialized form of a [models.PostRecord].
type PostJSON struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Mode      string                `json:"mode"`
	Status    string                `json:"status"`
	Message   string                `json:"message,omitempty"`
	Results   []PlatformOutcomeJSON `json:"results"`
}

// PlatformOutcomeJSON is one entry of [PostJSON.Results].
type PlatformOutcomeJSON struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// HistoryToJSON converts post history to an indented JSON array.
func HistoryToJSON(posts []*models.PostRecord) ([]byte, error) {
	out := make([]PostJSON, 0, len(posts))
	for _, post := range posts {
		p := PostJSON{
			ID:        post.ID(),
			CreatedAt: post.CreatedAt().UTC(),
			Mode:      post.Mode().String(),
			Status:    string(post.Status()),
			Message:   post.Message(),
			Results:   make([]PlatformOutcomeJSON, 0, len(post.Outcomes())),
		}
		for _, o := range post.Outcomes() {
			p.Results = append(p.Results, PlatformOutcomeJSON(o))
		}
		out = append(out, p)
	}
	return shared.MarshalJSON(out, true)
}

// FormatHistory renders posts in the named format.
func FormatHistory(posts []*models.PostRecord, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatText, "txt", "":
		return HistoryToText(posts)
	case FormatMarkdown, "md":
		return HistoryToMarkdown(posts)
	case FormatCSV:
		return HistoryToCSV(posts)
	case FormatJSON:
		return HistoryToJSON(posts)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected text, markdown, csv or json)", shared.ErrInvalidFlag, format)
	}
}

// WriteHistoryExport renders posts in format and writes them to path.
//
// Defaults to post_history.{ext} as the filename.
func WriteHistoryExport(posts []*models.PostRecord, format, path string) (string, error) {
	data, err := FormatHistory(posts, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "post_history." + extension(format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write history file: %w", err)
	}

	return path, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}
