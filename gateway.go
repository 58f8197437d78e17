package authflow

import (
	"context"
	"errors"
)

// Provider error codes carried by [GatewayError]. The engine's per-workflow
// mapping tables collapse these into the sentinel errors of errors.go;
// anything unlisted falls through to the workflow's unavailable sentinel.
const (
	// CodeEmailInUse is an identity-provider error code recognized by the engine.
	CodeEmailInUse = "email-already-in-use"
	// CodeInvalidEmail is an identity-provider error code recognized by the engine.
	CodeInvalidEmail = "invalid-email"
	// CodeWeakPassword is an identity-provider error code recognized by the engine.
	CodeWeakPassword = "weak-password"
	// CodeInvalidCredential is an identity-provider error code recognized by the engine.
	CodeInvalidCredential = "invalid-credential"
	// CodeUserNotFound is an identity-provider error code recognized by the engine.
	CodeUserNotFound = "user-not-found"
	// CodeWrongPassword is an identity-provider error code recognized by the engine.
	CodeWrongPassword = "wrong-password"
	// CodeTooManyRequests is an identity-provider error code recognized by the engine.
	CodeTooManyRequests = "too-many-requests"
	// CodeNetworkFailure is an identity-provider error code recognized by the engine.
	CodeNetworkFailure = "network-request-failed"
	// CodeUnknown marks provider failures with no recognized code.
	CodeUnknown = "unknown"
)

// GatewayError is the error shape every [IdentityGateway] implementation must
// return for provider-attributed failures. Code is machine-readable; Message
// is the provider's human-readable detail and is never shown to end users
// directly.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return "gateway: " + e.Code
	}
	return "gateway: " + e.Code + ": " + e.Message
}

// gatewayCode extracts the provider code from err, or CodeUnknown when err is
// not a GatewayError.
func gatewayCode(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeUnknown
}

// isContextError reports whether err is caller-side cancellation, which every
// workflow propagates unmapped.
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IdentityGateway is the contract of the remote identity provider. All calls
// are suspension points; implementations must return *GatewayError for
// provider-attributed failures so the engine's mapping tables apply.
type IdentityGateway interface {
	// CreateIdentity provisions a new identity for the credential pair and
	// returns it signed in.
	CreateIdentity(ctx context.Context, email, password string) (*Identity, error)
	// UpdateDisplayName sets the identity's display name in place.
	UpdateDisplayName(ctx context.Context, id *Identity, name string) error
	// SignIn authenticates the credential pair and returns the identity.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignOut releases any provider-side session state. Stateless providers
	// may treat this as local credential disposal.
	SignOut(ctx context.Context) error
	// Reload refreshes the identity record in place, including the
	// verification flag.
	Reload(ctx context.Context, id *Identity) error
	// SendVerificationEmail asks the provider to mail a verification link for
	// the identity.
	SendVerificationEmail(ctx context.Context, id *Identity) error
	// SendPasswordResetEmail asks the provider to mail reset instructions.
	SendPasswordResetEmail(ctx context.Context, email string) error
}
