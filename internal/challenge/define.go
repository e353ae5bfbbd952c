package challenge

import (
	"context"

	"github.com/stepauth/stepauth/internal/configuration"
	apierrors "github.com/stepauth/stepauth/internal/errors"
	"github.com/stepauth/stepauth/internal/events"
	"github.com/stepauth/stepauth/internal/models"

	"go.uber.org/zap"
)

// Define is the decision phase: given the transcript, continue challenging,
// issue tokens, or fail the login. Terminating outcomes delete the session
// record; CONTINUE never does.
func (e *Engine) Define(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
) (models.ChallengeResponse, error) {
	userName := event.UserName
	state := DeriveState(event.Request.Session)

	logger.Info("Deciding next step",
		zap.String("state", state.String()),
		zap.Int("rounds", len(event.Request.Session)))

	switch state {
	case StateAwaitingFlow, StateFlowSelected, StatePasswordVerified:
		return continueChallenge(), nil

	case StateOTPVerified:
		if err := e.Sessions.Delete(ctx, userName); err != nil {
			return models.ChallengeResponse{}, err
		}
		events.Publish(e.Publisher, events.AuthEvent{
			Kind:     events.KindAuthSucceeded,
			UserName: userName,
		})
		return models.ChallengeResponse{
			IssueTokens:        boolPtr(true),
			FailAuthentication: boolPtr(false),
		}, nil

	case StateAwaitingOTPRetry:
		record, err := e.Sessions.Get(ctx, userName)
		if err != nil {
			return models.ChallengeResponse{}, err
		}
		// Backstop only: the verify phase holds the authoritative lockout
		// check and raises the hard error.
		if record != nil && record.ResendCount >= configuration.MaxOTPResend {
			return e.failAuthentication(ctx, logger, userName, apierrors.ReasonMaxOTPResendAttempts)
		}
		return continueChallenge(), nil

	case StatePasswordRejected:
		return e.failAuthentication(ctx, logger, userName, apierrors.ReasonInvalidPassword)

	case StateFlowRejected:
		return e.failAuthentication(ctx, logger, userName, apierrors.ReasonInvalidAuthFlow)

	case StateUnknownStep:
		return e.failAuthentication(ctx, logger, userName, apierrors.ReasonUnknownError)

	default: // StateForeignChallenge
		return e.failAuthentication(ctx, logger, userName, apierrors.ReasonInvalidChallengeState)
	}
}

func continueChallenge() models.ChallengeResponse {
	return models.ChallengeResponse{
		ChallengeName:      configuration.CustomChallengeName,
		IssueTokens:        boolPtr(false),
		FailAuthentication: boolPtr(false),
	}
}

func (e *Engine) failAuthentication(
	ctx context.Context,
	logger *zap.Logger,
	userName string,
	reason string,
) (models.ChallengeResponse, error) {
	if err := e.Sessions.Delete(ctx, userName); err != nil {
		return models.ChallengeResponse{}, err
	}

	logger.Warn("Authentication failed", zap.String("reason", reason))
	events.Publish(e.Publisher, events.AuthEvent{
		Kind:     events.KindAuthFailed,
		UserName: userName,
		Reason:   reason,
	})

	return models.ChallengeResponse{
		IssueTokens:        boolPtr(false),
		FailAuthentication: boolPtr(true),
		PublicChallengeParameters: map[string]string{
			"failureReason": reason,
		},
	}, nil
}
