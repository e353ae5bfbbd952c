package apierrors

// Failure reasons surfaced to the identity pipeline via
// publicChallengeParameters. Stable contract strings.
const (
	ReasonInvalidPassword       = "INVALID_PASSWORD"
	ReasonMaxOTPResendAttempts  = "MAX_OTP_RESEND_ATTEMPTS_EXCEEDED"
	ReasonInvalidChallengeState = "INVALID_CHALLENGE_STATE"
	ReasonUnknownError          = "UNKNOWN_ERROR"
	ReasonInvalidAuthFlow       = "INVALID_AUTH_FLOW"
)

// HTTP 400 Bad Request.
const (
	ErrWeakPassword   = "PASSWORD_TOO_SHORT"
	ErrInvalidOTP     = "INVALID_OR_EXPIRED_OTP"
	ErrPasswordPolicy = "PASSWORD_POLICY_VIOLATION"
)

// HTTP 404 Not Found.
const (
	ErrUserNotFound = "USER_NOT_FOUND"
)

// HTTP 500 Internal Server Error.
const (
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrDeliveryFailed = "OTP_DELIVERY_FAILED"
)
