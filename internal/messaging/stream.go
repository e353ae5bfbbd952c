package messaging

import (
	"context"

	"github.com/stepauth/stepauth/internal/configuration"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// AuthStream is the in-process transport for the auth audit stream. The
// service has exactly one event topic, so the stream owns it: both the
// publishing side and the consuming side ride the same channel instance.
type AuthStream struct {
	channel *gochannel.GoChannel
}

func NewAuthStream() *AuthStream {
	return &AuthStream{
		channel: gochannel.NewGoChannel(gochannel.Config{
			Persistent: true,
		}, watermill.NopLogger{}),
	}
}

func (s *AuthStream) Publish(messages ...*message.Message) error {
	return s.channel.Publish(configuration.EventsAuth, messages...)
}

func (s *AuthStream) Subscribe() <-chan *message.Message {
	events, err := s.channel.Subscribe(context.Background(), configuration.EventsAuth)
	if err != nil {
		zap.L().Error("Failed to subscribe to the auth stream", zap.Error(err))
		return nil
	}
	return events
}

func (s *AuthStream) Close() error {
	return s.channel.Close()
}
