// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the movie browser's screens:
//  1. [SignInView] : Sign in with an email and TMDB API key, or sign up
//  2. [HomeView] : Featured banner and the popular, new release and action rows
//  3. [PopularView] : Ranked table of popular movies with page links
//  4. [SearchView] : Title search or discovery with removable filter chips
//  5. [WishlistView] : The signed-in user's saved movies
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Home feed progress flows through a channel from the [tasks.Engine], so rows appear as they load.
//
// Keyboard navigation uses vim-style bindings (j/k/h/l, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
// Pressing w on any selected movie toggles it in the wishlist.
package ui
