// Package repositories implements SQLite persistence for session state and the offline playlist cache.
//
// Key Implementations:
//   - [SessionRepository] : key/value rows in session_store
//   - [TokenRepository] : the session token under a fixed key; satisfies session.Persister
//   - [PlaylistRepository] : the last fetched playlists per account, stored verbatim as JSON
//
// Schema lives in the embedded migrations of the shared package; callers run
// [shared.RunMigrations] before constructing a repository.
package repositories
