// Package account is a pluggable user-account core: registration, credential
// verification, stateless login tokens, and time-boxed action tokens for
// password reset and email confirmation.
//
// Workflows:
//   - Service composes a credential hasher (bcrypt), a signed token codec
//     (HS256 JWT), a declarative field validator, and two injected
//     capabilities: a Store for durable account records and optional
//     notification Sinks for reset/confirmation delivery. The service holds
//     no mutable state and is safe for concurrent use.
//   - Action tokens are signed, expiring claim sets. The token's type claim
//     is the sole authorization gate; there is no revocation list or
//     single-use bookkeeping, a token stays valid until it expires.
//
// Stores:
//   - MemoryStore keeps records in process, for tests and embedded use.
//   - BunStore persists accounts in a relational table through Bun. Its
//     unique constraint on the identifying column is the backstop for the
//     narrow race between the service's duplicate check and the insert.
//
// Notification sinks:
//   - EmailSink renders pongo2 templates and delivers through a Mailer;
//     SMTPMailer is the production implementation. Any Sink implementation
//     can be injected instead.
package account
