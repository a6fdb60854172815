// Package server provides HTTP routing, middleware and the sandbox posting backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Sandbox Backend
//
// [SandboxHandler] implements /api/platforms, /api/character_limits and /api/post from the
// [sandbox] section of the config. Posts are validated and answered in the same shape as the
// real backend, including the flattened single-platform reply, but nothing is published.
// Platforms listed under [sandbox.fail] always fail with the configured message.
//
// `crosspost serve` runs it behind [Logging], [BearerAuth] and [RateLimit] via [Run].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
