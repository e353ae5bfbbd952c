package delivery

import (
	"context"
	"fmt"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const smsMessageTemplate = "Your verification code is: %s. Do not share this code with anyone. Message & data rates may apply."

// SMSChannel delivers passcodes over SNS.
type SMSChannel struct {
	client *sns.Client
}

func NewSMSChannel(ctx context.Context, config models.SNSDeliveryConfiguration) (*SMSChannel, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &SMSChannel{client: sns.NewFromConfig(awsCfg)}, nil
}

func (c *SMSChannel) Name() string {
	return ChannelSMS
}

func (c *SMSChannel) Target(account identity.Account) string {
	return account.PhoneNumber
}

func (c *SMSChannel) Send(ctx context.Context, target, code string) error {
	_, err := c.client.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(fmt.Sprintf(smsMessageTemplate, code)),
		PhoneNumber: aws.String(target),
	})
	if err != nil {
		return fmt.Errorf("failed to publish SMS: %w", err)
	}
	return nil
}
