// Package session holds the authenticated identity of the running client.
//
// A [Store] is the explicit session context: it is created once with [New], primed from durable
// storage by [Store.Init], and then handed to every component that needs to know who is signed in
// (the API client reads [Store.Token] on each request, the router reads [Store.IsAuthenticated]).
//
// # Token lifecycle
//
// The token is the user's numeric id rendered as a decimal string. It is:
//   - acquired by [Store.Login] and written through the [Persister]
//   - attached to every request by the services client
//   - cleared by [Store.Logout], by [Store.DeleteAccount] and by any profile fetch that the
//     server rejects with HTTP 401
//
// In memory the token is non-empty exactly when the session is authenticated, and after every
// successful lifecycle operation the persisted copy equals the in-memory one.
//
// # Errors
//
// Raising operations return a single [*Error] whose message is ready for display: the server's
// msg, else its payload, else the underlying error text, else a fixed per-operation fallback.
// The cause is kept for [errors.Is] and [errors.As]. [Store.UpdatePassword] never raises and
// [Store.Logout] never fails.
//
// # Persistence
//
// [Persister] is the storage adapter. [FileStore] keeps the token in a 0600 file; the
// repositories package provides a SQLite-backed implementation.
package session
