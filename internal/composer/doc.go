// package composer holds the post composer: the platform selection, posting mode,
// drafts and effective character limits for a session, and the submission state
// machine that turns them into a single backend request.
//
// A [Composer] is built once per session by [Load] (or [New] when the catalog is
// already at hand). It is not safe for concurrent use; callers that post from a
// background goroutine split the work with [Composer.Prepare] and
// [Composer.Complete] and keep every mutation on one goroutine.
package composer
