package models

import "time"

// AuthFlow is the flow the user selected in the first challenge round.
// Chosen once, immutable for the rest of the login.
type AuthFlow string

const (
	FlowPasswordOTP AuthFlow = "PASSWORD_OTP"
	FlowOTPOnly     AuthFlow = "OTP_ONLY"
)

func (f AuthFlow) Valid() bool {
	return f == FlowPasswordOTP || f == FlowOTPOnly
}

// SessionRecord is the mutable per-user state backing the OTP lifecycle for
// one login attempt. Field names are a contract with the shared state store.
//
// Invariant: LastSentResendCount <= ResendCount. A new code is dispatched
// only while ResendCount > LastSentResendCount, after which the two are
// equalized by the issuer.
type SessionRecord struct {
	AuthFlow            AuthFlow `json:"authFlow"`
	OTP                 string   `json:"otp"`
	ResendCount         int      `json:"resendCount"`
	LastSentResendCount int      `json:"lastSentResendCount"`
	OTPAttempts         int      `json:"otpAttempts"`
}

// ResendPending reports whether a resend request was accepted but the new
// code has not been generated and dispatched yet.
func (r SessionRecord) ResendPending() bool {
	return r.ResendCount > r.LastSentResendCount
}

// ResetRecord is the short-lived state behind an out-of-band password reset.
// ExpiresAt is absolute; the store TTL is only backstop cleanup.
type ResetRecord struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r ResetRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
