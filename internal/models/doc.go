// Package models defines the data types shared by the composer, the backend client and the persistence layer.
//
// The package contains two categories of types:
//
// 1. Catalog and wire types: data exchanged with the posting backend
//   - [Platform] : A posting destination with its enabled flag and character limit
//   - [Catalog] : The ordered, immutable platform list for a session
//   - [CharacterLimits] : Platform identifier to limit table
//   - [PostRequest], [PostEntry] : The /api/post body
//   - [PostResponse], [PlatformResult] : The /api/post reply
//
// 2. Persistent entities: Database-backed records
//   - [PostRecord] : One submission attempt and its per-platform outcome
//   - [DraftSet] : Draft text kept after a failed post
//
// Persistent entities implement the [Model] interface, and [Repository] describes their storage.
package models
