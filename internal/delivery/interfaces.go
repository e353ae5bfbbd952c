package delivery

import (
	"context"

	"github.com/stepauth/stepauth/internal/identity"
)

// Channel names used in configuration and dispatch policy.
const (
	ChannelSMS        = "sms"
	ChannelEmail      = "email"
	ChannelFilesystem = "filesystem"
)

// IChannel delivers a passcode to one kind of contact method.
type IChannel interface {
	Name() string
	// Target extracts this channel's delivery address from the account, or
	// returns "" when the account has none registered.
	Target(account identity.Account) string
	Send(ctx context.Context, target, code string) error
}

// IDispatcher fans a passcode out over the channels an account has
// registered.
type IDispatcher interface {
	// Send requires at least one channel to succeed. With suppressSMS the
	// SMS channel is left out of the attempt entirely.
	Send(ctx context.Context, account identity.Account, code string, suppressSMS bool) error
	// SendBestEffort attempts every available channel and never fails;
	// individual channel errors are only logged.
	SendBestEffort(ctx context.Context, account identity.Account, code string)
}
