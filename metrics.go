package authflow

import internalmetrics "github.com/stamfree/authflow/internal/metrics"

const (
	// MetricProvisionSuccess counts completed account-creation workflows.
	MetricProvisionSuccess = MetricID(internalmetrics.MetricProvisionSuccess)
	// MetricProvisionValidationFailure counts submissions rejected before any network call.
	MetricProvisionValidationFailure = MetricID(internalmetrics.MetricProvisionValidationFailure)
	// MetricProvisionGatewayFailure counts identity-provider failures that aborted provisioning.
	MetricProvisionGatewayFailure = MetricID(internalmetrics.MetricProvisionGatewayFailure)
	// MetricProfileWriteSkipped counts profile writes discarded because the write itself failed.
	MetricProfileWriteSkipped = MetricID(internalmetrics.MetricProfileWriteSkipped)
	// MetricProfileWriteTimeout counts profile writes discarded because the timeout settled first.
	MetricProfileWriteTimeout = MetricID(internalmetrics.MetricProfileWriteTimeout)
	// MetricMirrorWriteFailure counts best-effort session-mirror write failures.
	MetricMirrorWriteFailure = MetricID(internalmetrics.MetricMirrorWriteFailure)
	// MetricMirrorRemoveFailure counts best-effort session-mirror remove failures.
	MetricMirrorRemoveFailure = MetricID(internalmetrics.MetricMirrorRemoveFailure)
	// MetricLoginSuccess counts successful sign-ins.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure counts rejected sign-ins.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricLogout counts logout invocations (they always complete).
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricSignOutFailure counts best-effort gateway sign-out failures during logout.
	MetricSignOutFailure = MetricID(internalmetrics.MetricSignOutFailure)
	// MetricVerificationCheck counts verification status checks.
	MetricVerificationCheck = MetricID(internalmetrics.MetricVerificationCheck)
	// MetricVerificationVerified counts transitions into the verified phase.
	MetricVerificationVerified = MetricID(internalmetrics.MetricVerificationVerified)
	// MetricVerificationResend counts verification mails sent.
	MetricVerificationResend = MetricID(internalmetrics.MetricVerificationResend)
	// MetricVerificationResendFailure counts failed resend attempts.
	MetricVerificationResendFailure = MetricID(internalmetrics.MetricVerificationResendFailure)
	// MetricPasswordResetRequest counts reset mails requested.
	MetricPasswordResetRequest = MetricID(internalmetrics.MetricPasswordResetRequest)
	// MetricPasswordResetFailure counts failed reset requests.
	MetricPasswordResetFailure = MetricID(internalmetrics.MetricPasswordResetFailure)

	metricIDCount = internalmetrics.MetricIDCount
)
