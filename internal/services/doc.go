// Package services implements the HTTP client wrapper and the two API domains built on it.
//
// # Client
//
// [Client] is one configured request pipeline: base URL plus fixed path prefix, a 5 second
// timeout, a cookie jar, optional rate limiting and a [TokenProvider] consulted on every
// request. When a token is held it is sent as the Authorization header, raw by default or
// as "Bearer <token>" when [SchemeBearer] is configured.
//
// Request bodies are JSON except:
//   - paths listed in [Options.FormPaths] (default /login) are sent form-url-encoded
//   - an [*Upload] body is sent as multipart/form-data
//
// # Envelope handling
//
// Every response body is read as a [models.Envelope]. [Call] returns a [Result] for any 2xx
// response, including ones whose envelope carries the failure sentinel (code == 0); callers
// branch on [Result.Failed]. The error return is reserved for:
//   - [NetworkError] : no response at all, message "网络连接失败"
//   - [APIError] : non-2xx status; message taken from msg, then data, then the status code
//   - [shared.ErrInvalidResponse] : the payload did not decode into the requested type
//
// [Client.Do] is the raising variant that converts an envelope failure into an [APIError].
//
// # Domains
//
// [UserAPI] covers /login and /user*, [PlaylistAPI] covers /playlists*. Both are small
// adapters that map an operation to a method, path and body; all envelope handling lives
// in the client.
package services
