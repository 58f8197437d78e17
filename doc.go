// Package authflow provides the account and session orchestration engine for
// the StamFree mobile client: account provisioning against a remote identity
// provider, login/logout with a durable local session mirror, an
// email-verification state machine with resend cooldown, and password reset.
//
// The engine is constructed through [Builder.Build] and is safe for concurrent
// use afterwards, though the intended scheduling model is one workflow per
// user-initiated action. Each workflow runs its steps in order, calls the
// remote identity gateway and the profile store through the interfaces the
// caller provides, and returns a tagged error from the closed set declared in
// errors.go. Best-effort steps (profile persistence, mirror writes, sign-out)
// never fail their owning workflow; their failures are audited and counted.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Engine], [Builder], [Config],
// the [IdentityGateway] and [ProfileStore] contracts, and the [Verifier]
// state machine. Audit dispatch and metric storage live under internal/ and
// are never exported directly.
//
// # What this package must NOT do
//
//   - Render UI, navigate, or hold UI state. Workflows return results; the
//     shell decides what to show.
//   - Reimplement provider-owned behavior: password hashing, token issuance,
//     and verification-mail delivery belong to the remote identity provider.
//   - Treat the local mirror as a source of truth. It is a cache; every
//     workflow must tolerate its absence or staleness.
package authflow
