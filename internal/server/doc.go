// Package server provides HTTP routing, middleware, and the JSON handlers of the movie browser.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and dispatches on method, so several
// methods can share a path.
//
// # Sessions
//
// Local storage (users, wishlists, the API key, the remembered user) is shared by every client.
// Session storage is scoped by the mvx_session cookie, which [Sessions] issues on first contact
// and refreshes on every request. Idle sessions are pruned by [App.PruneSessions].
//
// # Routes
//
//	GET    /signin         → sign in state (authenticated, user, remembered, auto_login)
//	POST   /signin         → login {email, password, remember}
//	POST   /signup         → register {email, password, confirm_password}
//	POST   /logout         → clear the API key and signed in user
//	GET    /               → home feed: banner and rows
//	GET    /popular        → popular movies, ?view=table|infinite&page=N
//	GET    /search         → discover or title search, ?genres=&rating=&year=&sort=&languages=&query=&page=
//	GET    /genres         → genre list
//	GET    /wishlist       → the signed in user's wishlist
//	POST   /wishlist       → toggle a movie (body is the movie object)
//	GET    /wishlist/{id}  → membership check
//	DELETE /wishlist/{id}  → remove a movie
//
// Every route except sign in, sign up and logout requires a stored API key and redirects to
// /signin without one. Unknown paths redirect to / or /signin depending on the same check.
package server
