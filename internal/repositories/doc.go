// Package repositories implements SQLite persistence for the posting client.
//
// Key Implementations:
//   - [PostRepository] : post history, one row per submission plus its per-platform outcomes
//   - [DraftRepository] : the single saved draft set restored by `post --from-draft` and the TUI
//
// Multi-table writes run inside a transaction via [withTx].
package repositories
