// Package ui implements an interactive terminal composer using bubbletea's Elm architecture.
//
// The TUI moves through a small set of views:
//  1. [LoadingView] : Fetch the platform catalog and restore saved drafts
//  2. [ComposeView] : Select platforms and write unified or per-platform text
//  3. [SubmittingView] : Wait for the backend to answer
//  4. [ResultView] : Show per-platform success and failure
//  5. [ErrorView] : Report a catalog load failure
//
// The [Model] owns a [composer.Composer]. Text typed into the editor is written back through the
// composer so its character caps apply, and the posting request runs as a tea.Cmd so the
// interface stays responsive. Results are recorded through [tasks.Publisher].
//
// Keyboard navigation uses vim-style bindings (j/k, space, tab, esc, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
