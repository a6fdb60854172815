package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

var (
	_ list.Item         = platformItem{}
	_ list.ItemDelegate = platformDelegate{}
)

// platformItem wraps [models.Platform] with its selection state to implement [list.Item].
type platformItem struct {
	platform models.Platform
	selected bool
	editing  bool
}

func (i platformItem) FilterValue() string { return i.platform.ID }
func (i platformItem) Title() string       { return shared.DisplayName(i.platform.ID) }
func (i platformItem) Description() string {
	if !i.platform.Enabled {
		return "not linked"
	}
	return fmt.Sprintf("%d chars", i.platform.Limit)
}

// platformDelegate renders one checkbox line per platform.
type platformDelegate struct{}

func (d platformDelegate) Height() int                             { return 1 }
func (d platformDelegate) Spacing() int                            { return 0 }
func (d platformDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d platformDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(platformItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	box := "[ ]"
	if it.selected {
		box = "[x]"
	}

	line := fmt.Sprintf("%s%s %-9s %s", cursor, box, it.Title(), it.Description())
	switch {
	case !it.platform.Enabled:
		line = styles.dim.Render(line)
	case it.editing:
		line = styles.accent.Render(line + " ✎")
	case index == m.Index():
		line = styles.accent.Render(line)
	}
	fmt.Fprint(w, line)
}

// platformItems builds the list items from the composer state.
func platformItems(c *composer.Composer, editing string) []list.Item {
	platforms := c.Catalog().Platforms()
	items := make([]list.Item, len(platforms))
	for i, p := range platforms {
		items[i] = platformItem{
			platform: p,
			selected: c.Selected(p.ID),
			editing:  editing != "" && editing == p.ID,
		}
	}
	return items
}
