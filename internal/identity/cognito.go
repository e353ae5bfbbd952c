package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stepauth/stepauth/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoIdentity talks to an AWS Cognito user pool through the admin APIs.
type CognitoIdentity struct {
	client          *cognito.Client
	userPoolID      string
	clientID        string
	privilegedGroup string
}

func NewCognitoIdentity(
	ctx context.Context,
	config models.CognitoIdentityConfiguration,
	privilegedGroup string,
) (*CognitoIdentity, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &CognitoIdentity{
		client:          cognito.NewFromConfig(awsCfg),
		userPoolID:      config.UserPoolID,
		clientID:        config.ClientID,
		privilegedGroup: privilegedGroup,
	}, nil
}

func (c *CognitoIdentity) pool(scope string) string {
	if scope != "" {
		return scope
	}
	return c.userPoolID
}

func (c *CognitoIdentity) VerifyPassword(
	ctx context.Context,
	scope, userName, password string,
) (bool, error) {
	_, err := c.client.AdminInitiateAuth(ctx, &cognito.AdminInitiateAuthInput{
		UserPoolId: aws.String(c.pool(scope)),
		ClientId:   aws.String(c.clientID),
		AuthFlow:   types.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": userName,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notAuthorized *types.NotAuthorizedException
		var notFound *types.UserNotFoundException
		if errors.As(err, &notAuthorized) || errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify credentials: %w", err)
	}
	return true, nil
}

func (c *CognitoIdentity) GetAccount(
	ctx context.Context,
	scope, userName string,
) (Account, error) {
	out, err := c.client.AdminGetUser(ctx, &cognito.AdminGetUserInput{
		UserPoolId: aws.String(c.pool(scope)),
		Username:   aws.String(userName),
	})
	if err != nil {
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return Account{}, ErrUserNotFound
		}
		return Account{}, fmt.Errorf("failed to fetch account: %w", err)
	}

	var account Account
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "email":
			account.Email = aws.ToString(attr.Value)
		case "phone_number":
			account.PhoneNumber = aws.ToString(attr.Value)
		}
	}
	return account, nil
}

func (c *CognitoIdentity) SetPassword(
	ctx context.Context,
	scope, userName, password string,
) error {
	_, err := c.client.AdminSetUserPassword(ctx, &cognito.AdminSetUserPasswordInput{
		UserPoolId: aws.String(c.pool(scope)),
		Username:   aws.String(userName),
		Password:   aws.String(password),
		Permanent:  true,
	})
	if err != nil {
		var invalidPassword *types.InvalidPasswordException
		if errors.As(err, &invalidPassword) {
			return ErrPasswordPolicy
		}
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

func (c *CognitoIdentity) IsPrivileged(
	ctx context.Context,
	scope, userName string,
) (bool, error) {
	if c.privilegedGroup == "" {
		return false, nil
	}

	paginator := cognito.NewAdminListGroupsForUserPaginator(c.client,
		&cognito.AdminListGroupsForUserInput{
			UserPoolId: aws.String(c.pool(scope)),
			Username:   aws.String(userName),
		})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to list groups: %w", err)
		}
		for _, group := range page.Groups {
			if strings.Contains(aws.ToString(group.GroupName), c.privilegedGroup) {
				return true, nil
			}
		}
	}
	return false, nil
}
