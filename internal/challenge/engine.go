package challenge

import (
	"github.com/stepauth/stepauth/internal/delivery"
	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/messaging"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/otp"
	"github.com/stepauth/stepauth/internal/store"
)

// Engine implements the three challenge phases against injected ports. Each
// invocation is a short-lived unit of work; all cross-round state lives in
// the session store.
type Engine struct {
	Sessions   store.ISessionStore
	Identity   identity.IIdentity
	Dispatcher delivery.IDispatcher
	Generator  *otp.Generator
	Publisher  messaging.IPublisher
}

func boolPtr(b bool) *bool {
	return &b
}

func accountFromEvent(event models.ChallengeEvent) identity.Account {
	return identity.Account{
		Email:       event.Request.UserAttributes["email"],
		PhoneNumber: event.Request.UserAttributes["phone_number"],
	}
}
