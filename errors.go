package authflow

import "errors"

var (
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = errors.New("required fields missing")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWeakPassword is returned when the password is below the minimum length.
	ErrWeakPassword = errors.New("password too weak")
	// ErrInvalidEmail is returned when an email address fails validation or the
	// provider rejects it.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPhone is returned when a phone number does not normalize to the
	// required digit count.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrProvisionDisabled is returned when account provisioning is disabled.
	ErrProvisionDisabled = errors.New("account provisioning disabled")
	// ErrEmailInUse is returned when the provider already has an identity for
	// the requested email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrProvisionUnavailable is returned for unmapped identity-provider
	// failures during account provisioning.
	ErrProvisionUnavailable = errors.New("account provisioning backend unavailable")

	// ErrInvalidCredential is returned when the provider rejects the sign-in
	// credential pair without attributing the failure to either field.
	ErrInvalidCredential = errors.New("invalid email or password")
	// ErrUserNotFound is returned when no identity exists for the email.
	ErrUserNotFound = errors.New("no account found for this email")
	// ErrWrongPassword is returned when the provider rejects the password.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrLoginUnavailable is returned for unmapped sign-in failures.
	ErrLoginUnavailable = errors.New("login backend unavailable")

	// ErrVerificationDisabled is returned when email verification is disabled.
	ErrVerificationDisabled = errors.New("email verification disabled")
	// ErrVerificationUnavailable is returned for unmapped failures while
	// checking or resending email verification.
	ErrVerificationUnavailable = errors.New("email verification backend unavailable")
	// ErrVerifierClosed is returned by Verifier operations after Close.
	ErrVerifierClosed = errors.New("verifier closed")
	// ErrNoIdentity is returned when a workflow needs a current identity and
	// none was supplied.
	ErrNoIdentity = errors.New("no identity in session")

	// ErrPasswordResetDisabled is returned when password reset is disabled.
	ErrPasswordResetDisabled = errors.New("password reset disabled")
	// ErrTooManyRequests is returned when the provider throttles reset mail.
	ErrTooManyRequests = errors.New("too many requests")
	// ErrPasswordResetUnavailable is returned for unmapped reset failures.
	ErrPasswordResetUnavailable = errors.New("password reset backend unavailable")

	// ErrMirrorUnavailable wraps local mirror store infrastructure failures.
	ErrMirrorUnavailable = errors.New("session mirror unavailable")
	// ErrProfileUnavailable wraps profile store infrastructure failures.
	ErrProfileUnavailable = errors.New("profile store unavailable")
	// ErrEngineNotReady is returned when a workflow runs before the engine has
	// its required collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)
