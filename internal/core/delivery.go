package core

import (
	"context"

	"github.com/stepauth/stepauth/internal/delivery"
	"github.com/stepauth/stepauth/internal/models"

	"go.uber.org/zap"
)

// NewDispatcher assembles the enabled delivery channels. A channel listed
// without its configuration section is a deployment mistake worth dying for.
func NewDispatcher(ctx context.Context, config models.DeliveryConfiguration) *delivery.Dispatcher {
	var channels []delivery.IChannel

	for _, name := range config.Channels {
		switch name {
		case delivery.ChannelSMS:
			if config.SNS == nil {
				zap.L().Fatal("SMS channel enabled without an sns configuration section")
			}
			channel, err := delivery.NewSMSChannel(ctx, *config.SNS)
			if err != nil {
				zap.L().Fatal("Failed to initialize SMS channel", zap.Error(err))
			}
			channels = append(channels, channel)

		case delivery.ChannelEmail:
			if config.SMTP == nil {
				zap.L().Fatal("Email channel enabled without an smtp configuration section")
			}
			channel, err := delivery.NewEmailChannel(*config.SMTP)
			if err != nil {
				zap.L().Fatal("Failed to initialize email channel", zap.Error(err))
			}
			channels = append(channels, channel)

		case delivery.ChannelFilesystem:
			if config.Filesystem == nil {
				zap.L().Fatal("Filesystem channel enabled without a filesystem configuration section")
			}
			channels = append(channels, delivery.NewFilesystemChannel(*config.Filesystem))
		}
	}

	zap.L().Info("Delivery channels initialized", zap.Strings("channels", config.Channels))
	return delivery.NewDispatcher(channels)
}
