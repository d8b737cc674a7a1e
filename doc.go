// Package fideauth implements the session and verification machinery for the
// FastFide loyalty platform: out-of-band email verification tokens plus a
// client-resident session lifecycle manager.
//
// Verification tokens:
//   - Verification flows (signup confirmation, password reset) mint opaque
//     tokens through the codec in token.go, email them through a Notifier,
//     and redeem them against the identity Directory. Tokens are not tracked
//     server side; a token stays redeemable until its validity window closes.
//   - Each request variant has a dedicated command handler. The Router
//     dispatches the tagged VerificationRequest union exhaustively so new
//     variants are a compile-time checked addition.
//
// Session lifecycle:
//   - SessionManager is a boot-once lifecycle object. It restores the
//     persisted envelope at startup, persists the session on every
//     session-changed notification, and proactively refreshes credentials on
//     a fixed interval. Storage writes are atomic whole-value overwrites so
//     the subscription callback and the refresh ticker may race freely;
//     last write wins.
//
// The identity provider, the mail transport, and durable storage stay behind
// the IdentityClient, Notifier, and SessionStore interfaces. Every
// implementation in this package (SMTP, HTTP admin API, file, redis, memory)
// can be swapped without touching handler logic.
package fideauth
