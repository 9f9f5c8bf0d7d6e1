// Package models defines the data carried between the movie API, local storage and the views.
//
// The package contains three groups of types:
//
// 1. API shapes, owned by the external movie metadata service and never validated here:
//   - [Movie] : a movie as returned in list results, kept verbatim for wishlist storage
//   - [MoviePage] : one page of list results with paging totals
//   - [Genre] : genre id/name pair from the genre lookup
//
// 2. Stored records:
//   - [User] : an {id, password} credential pair from the "users" record
//   - [Wishlists] : the "wishlists" record mapping user id to saved movies
//
// 3. Search vocabulary:
//   - [DiscoverFilters] : genre, rating, year, sort and language filters for discovery
//   - [Genres], [SortOptions], [Languages] : the choices offered by the search views
package models
