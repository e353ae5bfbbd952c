package store

import (
	"context"
	"time"

	"github.com/stepauth/stepauth/internal/models"
)

// ResendOutcome reports what an atomic resend increment did.
type ResendOutcome int

const (
	// ResendAccepted means the counter was incremented and attempts reset.
	ResendAccepted ResendOutcome = iota
	// ResendDenied means the counter already sits at the lockout threshold;
	// nothing was mutated.
	ResendDenied
	// ResendNoSession means no session record exists for the user.
	ResendNoSession
)

// ISessionStore persists one mutable record per in-flight login, keyed by
// user identifier. Counter mutations are atomic conditional updates so that
// concurrent invocations for the same user cannot lose increments. Reads are
// served by the Redis primary and always see the latest counters.
type ISessionStore interface {
	// Get returns the session record, or nil when none exists.
	Get(ctx context.Context, userName string) (*models.SessionRecord, error)
	// Put creates or overwrites the record wholesale.
	Put(ctx context.Context, userName string, record models.SessionRecord) error
	Delete(ctx context.Context, userName string) error

	// IncrementResend accepts a resend request unless resendCount is already
	// at max. On acceptance otpAttempts is reset to zero in the same step.
	IncrementResend(ctx context.Context, userName string, max int) (ResendOutcome, error)
	// IncrementAttempts counts one incorrect OTP entry.
	IncrementAttempts(ctx context.Context, userName string) error
	// ResetOTP stores a freshly issued first code and zeroes every counter,
	// leaving the selected flow untouched.
	ResetOTP(ctx context.Context, userName string, otp string) error
	// MarkOTPSent records a freshly dispatched code and advances
	// lastSentResendCount to resendCount, but only while a resend is
	// pending. Returns false (and stores nothing) otherwise, which makes a
	// duplicated create-phase trigger a no-op.
	MarkOTPSent(ctx context.Context, userName string, otp string) (bool, error)

	Close() error
}

// IResetStore persists short-TTL password-reset records in a namespace
// separate from login sessions.
type IResetStore interface {
	// GetReset returns the reset record, or nil when none exists.
	GetReset(ctx context.Context, userName string) (*models.ResetRecord, error)
	PutReset(ctx context.Context, userName string, record models.ResetRecord, ttl time.Duration) error
	DeleteReset(ctx context.Context, userName string) error
}
