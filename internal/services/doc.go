// Package services implements the HTTP client for the posting backend.
//
// # Raw API Access
//
// [APIService] performs raw GET/POST requests against the backend and returns an [APIResponse] with
// status, headers, body and decoded JSON. It backs the `api get|post` commands and the typed client.
// An optional [rate.Limiter] throttles outgoing requests.
//
// # Typed Backend Client
//
// [BackendService] wraps [APIService] with the three endpoints the composer needs:
//   - GET /api/platforms : platform catalog
//   - GET /api/character_limits : character limit table
//   - POST /api/post : submission
//
// It satisfies composer.CatalogSource and composer.ImagePoster.
//
// # Authentication
//
// [NewHTTPClient] builds an [http.Client] from configuration. When a token is configured the client
// is an [oauth2.Client] over a static token source, so every request carries a bearer header.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMalformedResponse] : body is not the expected JSON
package services
