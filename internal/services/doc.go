// Package services implements the movie catalogue client and the account service.
//
// # Movie Service
//
// [MovieService] is the read-only catalogue the views depend on. [TMDBService] implements it
// over the TMDB v3 REST API:
//   - URLs are formatted by [URLBuilder], which keeps TMDB's query parameter order and the
//     default pages of each listing (popular 1, now playing 2).
//   - The api_key of the signed-in user is read from a [KeySource] on every call, so signing
//     out takes effect immediately.
//   - Requests are throttled with a [rate.Limiter] and, when configured, successful page
//     responses are cached in memory for a fixed TTL.
//   - A v4 read access token, when configured, is attached as a bearer through an
//     [oauth2.StaticTokenSource]; the api_key parameter is sent regardless.
//
// # Auth Service
//
// [AuthService] stores credentials in the "users" record and tracks the signed-in user.
// The password is the user's TMDB API key: registration checks it with a [KeyValidator] and
// login copies it to the "TMDb-Key" item read by [KeySource].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no API key is stored
//   - [shared.ErrAPIRequest] : transport or decode failure; [HTTPError] wraps it for non-2xx responses
//   - [shared.ErrLoginFailed], [shared.ErrLoginError] : login rejected or storage failed
//   - [shared.ErrEmailRegistered], [shared.ErrInvalidAPIKey] : registration rejected
//
// Use [IsStatus] to branch on a specific HTTP status.
package services
