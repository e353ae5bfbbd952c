package identity

import (
	"context"
	"errors"
)

// Account holds the contact methods registered for a user in the identity
// backend. Empty fields mean the channel is not available for that user.
type Account struct {
	Email       string
	PhoneNumber string
}

// Sentinel errors reported by SetPassword so callers can surface the
// specific reason without depending on backend error types.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrPasswordPolicy = errors.New("password does not meet policy requirements")
)

// IIdentity is the external identity backend: credential verification,
// account directory and credential updates. The scope parameter selects the
// account namespace (user pool); an empty scope uses the configured default.
type IIdentity interface {
	// VerifyPassword reports whether the username/password pair is valid.
	// A wrong password is (false, nil), not an error.
	VerifyPassword(ctx context.Context, scope, userName, password string) (bool, error)
	// GetAccount returns the registered contact methods for the user.
	GetAccount(ctx context.Context, scope, userName string) (Account, error)
	// SetPassword replaces the user's credential. Returns ErrPasswordPolicy
	// or ErrUserNotFound for the backend's declared rejections.
	SetPassword(ctx context.Context, scope, userName, password string) error
	// IsPrivileged reports whether the user belongs to the privileged group
	// whose accounts never receive OTP over SMS.
	IsPrivileged(ctx context.Context, scope, userName string) (bool, error)
}
