package core

import (
	"context"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"

	"go.uber.org/zap"
)

// NewIdentity builds the identity backend adapter selected in the
// configuration.
func NewIdentity(
	ctx context.Context,
	config models.IdentityConfiguration,
	privilegedGroup string,
) identity.IIdentity {
	switch config.Type {
	case "cognito":
		backend, err := identity.NewCognitoIdentity(ctx, *config.Cognito, privilegedGroup)
		if err != nil {
			zap.L().Fatal("Failed to initialize Cognito identity backend", zap.Error(err))
		}
		return backend
	case "http":
		return identity.NewHTTPIdentity(*config.HTTP, privilegedGroup)
	default:
		zap.L().Fatal("Unknown identity backend type", zap.String("type", config.Type))
		return nil
	}
}
