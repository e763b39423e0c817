// Package booktracker implements the accounts and session core of the
// Booktracker service: registration with email verified activation,
// credential based login issuing an access/session token pair, transparent
// session renewal, and single use password reset links.
//
// Persistent user and library records live in a SQL store managed through
// bun repositories. Activation and reset hashes are ephemeral and live in a
// TTL keyed token store. Access and session tokens are stateless JWTs signed
// with two distinct secrets.
package booktracker
