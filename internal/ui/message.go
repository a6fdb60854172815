package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crosspost/internal/composer"
	"github.com/desertthunder/crosspost/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogLoaded MsgKind = iota
	MsgPostComplete
)

type catalogLoaded struct {
	composer *composer.Composer
	restored bool
	err      error
}

type postComplete struct {
	sub  *composer.Submission
	resp *models.PostResponse
	err  error
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(c *composer.Composer, restored bool, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogLoaded{composer: c, restored: restored, err: err}}
}

// postCompleteMsg is the constructor for [MsgPostComplete]
func postCompleteMsg(sub *composer.Submission, resp *models.PostResponse, err error) Msg {
	return Msg{kind: MsgPostComplete, data: postComplete{sub: sub, resp: resp, err: err}}
}
