package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/desertthunder/crosspost/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	ComposeView
	SubmittingView
	ResultView
	ErrorView
)

type focusArea int

const (
	focusPlatforms focusArea = iota
	focusEditor
)

// Options configures a new [Model].
type Options struct {
	Mode          models.PostMode
	RestoreDrafts bool
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	publisher *tasks.Publisher
	opts      Options
	composer  *composer.Composer
	width     int
	height    int
	platforms list.Model
	editor    textarea.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	focus     focusArea
	editing   string // platform shown in the editor in individual mode
	pending   *composer.Submission
	result    *tasks.PublishResult
	restored  bool
	notice    string
	err       error
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context, publisher *tasks.Publisher, opts Options) Model {
	editor := textarea.New()
	editor.Placeholder = "What's happening?"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(60)
	editor.SetHeight(8)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.accent

	l := list.New(nil, platformDelegate{}, 30, 10)
	l.Title = "Platforms"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return Model{
		ctx:       ctx,
		view:      LoadingView,
		publisher: publisher,
		opts:      opts,
		platforms: l,
		editor:    editor,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the model and starts loading the platform catalog.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCatalog())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.force) {
			return m, tea.Quit
		}
		return m.handleKeyPress(msg)
	case spinner.TickMsg:
		if m.view != LoadingView && m.view != SubmittingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		switch msg.kind {
		case MsgCatalogLoaded:
			return m.handleCatalogLoaded(msg.data.(catalogLoaded))
		case MsgPostComplete:
			return m.handlePostComplete(msg.data.(postComplete))
		}
	}

	if m.view == ComposeView && m.focus == focusEditor {
		return m.updateEditor(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case LoadingView, SubmittingView:
		return m, nil
	case ErrorView:
		if key.Matches(msg, m.keys.quit, m.keys.back, m.keys.enter) {
			return m, tea.Quit
		}
		return m, nil
	case ResultView:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back, m.keys.enter):
			m.view = ComposeView
			m.result = nil
			return m, nil
		}
		return m, nil
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.submit):
		return m.submit()
	case key.Matches(msg, m.keys.mode):
		m.toggleMode()
		return m, nil
	case key.Matches(msg, m.keys.focus):
		return m.switchFocus()
	case key.Matches(msg, m.keys.next) && m.composer.Mode() == models.Individual:
		m.cycleDraft()
		return m, nil
	}

	if m.focus == focusEditor {
		if key.Matches(msg, m.keys.back) {
			m.editor.Blur()
			m.focus = focusPlatforms
			return m, nil
		}
		return m.updateEditor(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		m.toggleHighlighted()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.platforms.SelectedItem().(platformItem); ok && it.selected && m.composer.Mode() == models.Individual {
			m.editing = it.platform.ID
			m.syncEditor()
		}
		return m.switchFocus()
	}

	var cmd tea.Cmd
	m.platforms, cmd = m.platforms.Update(msg)
	return m, cmd
}

func (m Model) handleCatalogLoaded(data catalogLoaded) (tea.Model, tea.Cmd) {
	if data.err != nil {
		m.err = data.err
		m.view = ErrorView
		return m, nil
	}

	m.composer = data.composer
	m.restored = data.restored
	if !data.restored {
		m.composer.SetMode(m.opts.Mode)
	}
	m.ensureEditing()
	m.refreshPlatforms()
	m.syncEditor()

	m.view = ComposeView
	m.focus = focusEditor
	if m.restored {
		m.notice = "Restored unsent drafts"
	}
	return m, m.editor.Focus()
}

func (m Model) handlePostComplete(data postComplete) (tea.Model, tea.Cmd) {
	out := m.composer.Complete(data.sub, data.resp, data.err)
	m.result = m.publisher.Record(nil, m.composer, out)
	m.pending = nil
	m.view = ResultView

	m.ensureEditing()
	m.refreshPlatforms()
	m.syncEditor()
	return m, nil
}

// submit validates the composer and starts the backend request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	sub, err := m.composer.Prepare()
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.pending = sub
	m.view = SubmittingView
	return m, tea.Batch(m.spinner.Tick, m.post(sub))
}

func (m Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.composer.Mode() == models.Individual && m.editing == "" {
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.commitEditor()
	return m, cmd
}

// commitEditor writes the editor value into the composer and reflects any truncation back.
func (m *Model) commitEditor() {
	v := m.editor.Value()
	var stored string
	if m.composer.Mode() == models.Unified {
		if err := m.composer.SetUnifiedText(v); err != nil {
			m.notice = err.Error()
			return
		}
		stored = m.composer.UnifiedText()
	} else {
		if err := m.composer.SetDraft(m.editing, v); err != nil {
			m.notice = err.Error()
			return
		}
		stored, _ = m.composer.Draft(m.editing)
	}
	if stored != v {
		m.editor.SetValue(stored)
	}
}

// syncEditor loads the text of the current mode into the editor.
func (m *Model) syncEditor() {
	if m.composer.Mode() == models.Unified {
		m.editor.SetValue(m.composer.UnifiedText())
		return
	}
	if m.editing == "" {
		m.editor.SetValue("")
		return
	}
	m.editor.SetValue(m.composer.Text(m.editing))
}

func (m *Model) toggleMode() {
	if m.composer.Mode() == models.Unified {
		m.composer.SetMode(models.Individual)
	} else {
		m.composer.SetMode(models.Unified)
	}
	m.ensureEditing()
	m.refreshPlatforms()
	m.syncEditor()
}

func (m *Model) toggleHighlighted() {
	it, ok := m.platforms.SelectedItem().(platformItem)
	if !ok {
		return
	}
	if err := m.composer.Toggle(it.platform.ID); err != nil {
		if !errors.Is(err, shared.ErrInvalidSelection) {
			m.notice = err.Error()
		}
		return
	}

	m.ensureEditing()
	m.refreshPlatforms()
	m.syncEditor()
}

// cycleDraft moves the editor to the next selected platform.
func (m *Model) cycleDraft() {
	active := m.composer.ActivePlatforms()
	if len(active) == 0 {
		return
	}
	next := active[0]
	for i, id := range active {
		if id == m.editing {
			next = active[(i+1)%len(active)]
			break
		}
	}
	m.editing = next
	m.refreshPlatforms()
	m.syncEditor()
}

// ensureEditing keeps the edited platform among the selected ones.
func (m *Model) ensureEditing() {
	active := m.composer.ActivePlatforms()
	for _, id := range active {
		if id == m.editing {
			return
		}
	}
	m.editing = ""
	if len(active) > 0 {
		m.editing = active[0]
	}
}

func (m Model) switchFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusEditor {
		m.editor.Blur()
		m.focus = focusPlatforms
		return m, nil
	}
	m.focus = focusEditor
	return m, m.editor.Focus()
}

func (m *Model) refreshPlatforms() {
	editing := ""
	if m.composer.Mode() == models.Individual {
		editing = m.editing
	}
	m.platforms.SetItems(platformItems(m.composer, editing))
}

func (m *Model) resize() {
	listWidth := 34
	editorWidth := m.width - listWidth - 8
	if editorWidth < 20 {
		editorWidth = 20
	}
	m.platforms.SetSize(listWidth, len(m.platforms.Items())+4)
	m.editor.SetWidth(editorWidth)
	if h := m.height - 12; h > 3 {
		m.editor.SetHeight(min(h, 16))
	}
}

// loadCatalog fetches the catalog and restores saved drafts.
func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		c, err := m.publisher.Load(m.ctx, nil)
		if err != nil {
			return catalogLoadedMsg(nil, false, err)
		}
		if !m.opts.RestoreDrafts {
			return catalogLoadedMsg(c, false, nil)
		}
		restored, err := m.publisher.RestoreDrafts(c)
		if err != nil {
			return catalogLoadedMsg(c, false, nil)
		}
		return catalogLoadedMsg(c, restored, nil)
	}
}

// post sends sub to the backend off the update loop.
func (m Model) post(sub *composer.Submission) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.publisher.Send(m.ctx, sub)
		return postCompleteMsg(sub, resp, err)
	}
}

// Run starts the TUI application.
func Run(ctx context.Context, publisher *tasks.Publisher, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, publisher, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
