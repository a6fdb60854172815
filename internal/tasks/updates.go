package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/shared"
)

// ProgressUpdate represents a progress event during a publish.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadCatalog Phase = iota
	Validate
	Submit
	Record
)

func (p Phase) String() string {
	switch p {
	case LoadCatalog:
		return "load_catalog"
	case Validate:
		return "validate"
	case Submit:
		return "submit"
	case Record:
		return "record"
	default:
		return ""
	}
}

func loadingCatalogUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		Step:    0,
		Total:   1,
		Message: "Fetching platforms and character limits...",
	}
}

func catalogLoadedUpdate(c *composer.Composer) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d platforms (%d enabled)", c.Catalog().Len(), len(c.Catalog().Enabled())),
		Data:    c.Catalog(),
	}
}

func validatedUpdate(sub *composer.Submission) ProgressUpdate {
	names := make([]string, len(sub.Platforms))
	for i, id := range sub.Platforms {
		names[i] = shared.DisplayName(id)
	}
	return ProgressUpdate{
		Phase:   Validate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Posting to %s (%s mode)", strings.Join(names, ", "), sub.Mode),
		Data:    sub,
	}
}

func submittedUpdate(out composer.Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Submit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Post finished: %s (%d/%d platforms)", out.State, len(out.Succeeded()), len(out.Platforms)),
		Data:    out,
	}
}

func recordUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Record,
		Step:    step,
		Total:   total,
		Message: message,
	}
}
