package events

import (
	"encoding/json"
	"time"

	"github.com/stepauth/stepauth/internal/messaging"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth lifecycle event kinds.
const (
	KindOTPSent            = "auth.otp_sent"
	KindAuthSucceeded      = "auth.succeeded"
	KindAuthFailed         = "auth.failed"
	KindPasswordResetStart = "auth.password_reset_started"
	KindPasswordResetDone  = "auth.password_reset_completed"
)

// AuthEvent is the audit record published for every notable step of a login
// or password reset.
type AuthEvent struct {
	Kind      string    `json:"kind"`
	UserName  string    `json:"userName"`
	Reason    string    `json:"reason,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publish serializes the event and hands it to the publisher. Publishing is
// best effort; an audit gap must never fail the authentication operation.
func Publish(publisher messaging.IPublisher, event AuthEvent) {
	if publisher == nil {
		return
	}

	event.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Failed to marshal auth event", zap.Error(err))
		return
	}

	if err = publisher.Publish(message.NewMessage(uuid.New().String(), payload)); err != nil {
		zap.L().Error("Failed to publish auth event",
			zap.String("kind", event.Kind),
			zap.Error(err))
	}
}

// HandleEvents consumes the auth event stream and writes the audit log.
// Runs until the subscription channel closes.
func HandleEvents(events <-chan *message.Message) {
	for msg := range events {
		var event AuthEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			zap.L().Error("Failed to decode auth event", zap.Error(err))
			msg.Ack()
			continue
		}

		zap.L().Info("Auth event",
			zap.String("kind", event.Kind),
			zap.String("user", event.UserName),
			zap.String("reason", event.Reason),
			zap.Time("at", event.Timestamp))
		msg.Ack()
	}
}
