// Package repositories reads and writes the application's persisted records.
//
// Records live in a [shared.Storage] under well-known keys and keep the JSON layout the web
// client used, so a database written by one client can be read by any other.
//
// Key Implementations:
//   - [UserRepository] : the "users" array of {id, password} credentials
//   - [WishlistRepository] : the "wishlists" object mapping user id to saved movies
//
// Each call is a whole-record read-modify-write; there is no locking across processes and the
// last writer wins.
package repositories
