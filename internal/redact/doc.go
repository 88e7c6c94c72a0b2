// Package redact scrubs credentials from change payloads before they
// are sent to a provider.
//
// Two passes run in order. The keyword pass blanks any line mentioning
// a configured credential keyword (password, token, api_key, and so
// on), since a line that names a secret usually carries one. The regex
// pass then catches well-known token shapes that survive the first
// pass: AWS keys, JWTs, GitHub and Slack tokens, private key headers.
//
// Redaction is lossy on purpose. A commit message or review generated
// from a scrubbed diff is still useful; a leaked key is not.
package redact
