// Package tasks runs playlist operations that touch many playlists at once, with progress reporting.
//
// # Bulk Delete
//
// [Engine.BulkDelete] removes a set of playlists with a small worker pool:
//   - a producer feeds ids to the workers, paced by a [rate.Limiter]
//   - each worker deletes through the [Deleter] (the playlist library), so the local collection
//     and the offline cache follow every successful delete
//   - one failed delete never stops the others; every outcome is collected in the result
//
// # Progress Reporting
//
// Operations report through an optional ProgressUpdate channel. Sends use select with default,
// so a slow or absent reader never blocks the workers.
//
// [rate.Limiter]: https://pkg.go.dev/golang.org/x/time/rate#Limiter
package tasks
