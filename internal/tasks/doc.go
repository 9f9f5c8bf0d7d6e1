// Package tasks shapes catalogue responses into the application's views.
//
// # Operations
//
// [Engine] wraps a [services.MovieService] and provides:
//
//  1. [Engine.Home] : the home screen
//     - Picks a random banner from the featured movies
//     - Fetches "Popular Movies", "New Releases" and "Action Movies" concurrently with errgroup
//     - A failing row is logged and left empty; the feed itself only fails on cancellation
//
//  2. [Engine.PopularTable] and [Engine.LoadMore] : the popular views
//     - Table view: one page, six rows, with a five page window around the current page
//     - Infinite view: appends pages while page < min(total_pages, 500)
//
//  3. [Engine.Search] : discovery with [models.DiscoverFilters], or title search when a query is set
//
//  4. [Engine.Collect] : fetches a page range of any listing with a small worker pool and
//     merges the results for export
//
// # Progress Reporting
//
// Long operations accept an optional channel of [ProgressUpdate]. Updates are sent with select
// and default so a slow reader never blocks the operation.
package tasks
