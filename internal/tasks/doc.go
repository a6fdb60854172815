// Package tasks orchestrates composer operations with real-time progress reporting.
//
// # Core Operations
//
// [Publisher] wraps the composer with the outer effects of posting:
//
//  1. [Publisher.Load] : fetch the platform catalog and limit table
//  2. [Publisher.Publish] : validate, submit, then record the outcome
//  3. [Publisher.Record] : persist an outcome produced elsewhere (the TUI submits in a tea.Cmd)
//
// Recording writes a [models.PostRecord] to the history store, saves the composer's
// drafts after a failure and clears them after a full success. Storage errors are
// logged and never change the outcome of a post.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Updates use
// select with default so a slow reader never blocks a post.
package tasks
