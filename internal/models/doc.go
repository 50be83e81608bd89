// Package models defines the data exchanged with the remote music service API.
//
// The package contains three groups of types:
//
// 1. Wire envelope
//   - [Envelope] : the uniform {code, msg, data} wrapper every endpoint returns
//   - [PasswordStatus] : the raw {status, msg} object of the password endpoint
//
// 2. Entities returned by the API
//   - [User] : the profile of the signed-in account
//   - [Playlist] : a saved collection; unknown fields are kept verbatim
//
// 3. Request payloads
//   - [Credentials], [ProfileUpdate], [PasswordChange], [PasswordSnapshot], [Registration]
//
// The password endpoint reports success with status == 1 while every other endpoint reports
// failure with code == 0. Both conventions are kept as-is.
package models
