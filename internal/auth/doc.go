// Package auth provides bearer-token authentication for the warden HTTP API.
//
// Two credential types are accepted:
//
//   - HS256 JWTs signed with the configured secret (auth.jwt_secret)
//   - static tokens of the form wdn_<id>_<secret>, created by
//     "warden bootstrap" and stored as bcrypt hashes
//
// Authentication is optional: when no secret and no tokens are configured,
// the HTTP surface is served open and this package is not wired in.
package auth
