package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// View renders the current view.
func (m Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case ComposeView:
		return m.renderCompose()
	case SubmittingView:
		return m.renderSubmitting()
	case ResultView:
		return m.renderResult()
	case ErrorView:
		return m.renderError()
	default:
		return "Unknown view"
	}
}

func (m Model) renderLoading() string {
	return fmt.Sprintf("\n  %s Loading platforms...\n", m.spinner.View())
}

func (m Model) renderCompose() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Crosspost"))
	b.WriteString("\n")

	listPane, editorPane := styles.pane, styles.pane
	if m.focus == focusPlatforms {
		listPane = styles.active
	} else {
		editorPane = styles.active
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listPane.Render(m.platforms.View()),
		" ",
		editorPane.Render(m.renderEditor()),
	)
	b.WriteString(body)
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(styles.warn.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderEditor() string {
	var b strings.Builder

	mode := m.composer.Mode()
	if mode == models.Individual {
		if m.editing == "" {
			b.WriteString(styles.dim.Render("Select a platform to write its draft."))
			return b.String()
		}
		active := m.composer.ActivePlatforms()
		pos := 0
		for i, id := range active {
			if id == m.editing {
				pos = i + 1
			}
		}
		b.WriteString(styles.accent.Render(fmt.Sprintf("%s draft (%d/%d)", shared.DisplayName(m.editing), pos, len(active))))
	} else {
		b.WriteString(styles.accent.Render("Unified post"))
	}
	b.WriteString("\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")
	b.WriteString(m.renderCounter())
	b.WriteString("  ")
	b.WriteString(styles.dim.Render("mode: " + mode.String()))
	return b.String()
}

func (m Model) renderCounter() string {
	var (
		limit int
		err   error
	)
	if m.composer.Mode() == models.Unified {
		limit, err = m.composer.Limit()
	} else {
		limit, err = m.composer.LimitFor(m.editing)
	}
	if err != nil {
		return styles.err.Render(err.Error())
	}

	c := composer.Usage(m.editor.Value(), limit)
	switch {
	case c.Over:
		return styles.err.Render(c.String())
	case c.Warn:
		return styles.warn.Render(c.String())
	default:
		return styles.dim.Render(c.String())
	}
}

func (m Model) renderSubmitting() string {
	names := []string{}
	if m.pending != nil {
		for _, id := range m.pending.Platforms {
			names = append(names, shared.DisplayName(id))
		}
	}
	return fmt.Sprintf("\n  %s Posting to %s...\n", m.spinner.View(), strings.Join(names, ", "))
}

func (m Model) renderResult() string {
	var b strings.Builder
	if m.result == nil {
		return ""
	}
	out := m.result.Outcome

	switch out.State {
	case composer.Success:
		b.WriteString(styles.ok.Render("Post succeeded"))
	case composer.PartialFailure:
		b.WriteString(styles.warn.Render("Post failed on some platforms"))
	default:
		b.WriteString(styles.err.Render("Post failed: " + out.Message))
	}
	b.WriteString("\n\n")

	for _, id := range out.Platforms {
		r, ok := out.Results[id]
		switch {
		case ok && r.Success:
			b.WriteString(styles.ok.Render("  ✓ " + shared.DisplayName(id)))
		case ok && r.Error != "":
			b.WriteString(styles.err.Render(fmt.Sprintf("  ✗ %s (%s)", shared.DisplayName(id), r.Error)))
		case ok || out.State != composer.Success:
			b.WriteString(styles.err.Render("  ✗ " + shared.DisplayName(id)))
		default:
			b.WriteString(styles.ok.Render("  ✓ " + shared.DisplayName(id)))
		}
		b.WriteString("\n")
	}

	if m.result.Record != nil {
		b.WriteString(styles.dim.Render("\nSaved to history as " + m.result.Record.ID()))
		b.WriteString("\n")
	}
	if m.result.DraftsSaved {
		b.WriteString(styles.dim.Render("Drafts kept for retry"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render("enter/esc: back to composer • q: quit"))
	return b.String()
}

func (m Model) renderError() string {
	return fmt.Sprintf("\n  %s\n\n  %s\n",
		styles.err.Render("Error: "+m.err.Error()),
		styles.help.Render("Press q to quit"))
}
