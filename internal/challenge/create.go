package challenge

import (
	"context"
	"fmt"

	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/events"
	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"

	"go.uber.org/zap"
)

// Create is the issuance phase: given the transcript, decide which challenge
// to present next and perform its side effects (code generation, dispatch,
// state update). The session record is read with the latest counters; the
// state update happens only after dispatch is attempted, never before.
func (e *Engine) Create(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
) (models.ChallengeResponse, error) {
	state := DeriveState(event.Request.Session)

	logger.Info("Issuing challenge", zap.String("state", state.String()))

	switch state {
	case StateAwaitingFlow:
		return presentChallenge(configuration.StepSelectAuthFlow), nil

	case StateFlowSelected:
		record, err := e.Sessions.Get(ctx, event.UserName)
		if err != nil {
			return models.ChallengeResponse{}, err
		}
		if record == nil {
			return models.ChallengeResponse{}, fmt.Errorf("flow selected but no session record exists")
		}

		if record.AuthFlow == models.FlowPasswordOTP {
			return presentChallenge(configuration.StepPasswordChallenge), nil
		}
		if err = e.issueFreshOTP(ctx, logger, event); err != nil {
			return models.ChallengeResponse{}, err
		}
		return presentChallenge(configuration.StepOTPChallenge), nil

	case StatePasswordVerified:
		if err := e.issueFreshOTP(ctx, logger, event); err != nil {
			return models.ChallengeResponse{}, err
		}
		return presentChallenge(configuration.StepOTPChallenge), nil

	case StateAwaitingOTPRetry:
		if err := e.fulfillPendingResend(ctx, logger, event); err != nil {
			return models.ChallengeResponse{}, err
		}
		return presentChallenge(configuration.StepOTPChallenge), nil

	default:
		return models.ChallengeResponse{},
			fmt.Errorf("no challenge to issue in state %s", state)
	}
}

func presentChallenge(step string) models.ChallengeResponse {
	return models.ChallengeResponse{
		PublicChallengeParameters:  map[string]string{"challenge": step},
		PrivateChallengeParameters: map[string]string{"challengeMetadata": step},
		ChallengeMetadata:          step,
	}
}

// issueFreshOTP generates the first code of an OTP phase and zeroes every
// counter. The code is recorded as active only after dispatch succeeded on
// at least one channel.
func (e *Engine) issueFreshOTP(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
) error {
	account := accountFromEvent(event)

	code, err := e.Generator.Generate(account.PhoneNumber)
	if err != nil {
		return err
	}

	if err = e.dispatch(ctx, logger, event, account, code); err != nil {
		return err
	}

	return e.Sessions.ResetOTP(ctx, event.UserName, code)
}

// fulfillPendingResend re-presents the OTP challenge and, when a resend was
// accepted since the last dispatch, generates and delivers a new code. A
// plain wrong-answer retry dispatches nothing.
func (e *Engine) fulfillPendingResend(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
) error {
	record, err := e.Sessions.Get(ctx, event.UserName)
	if err != nil {
		return err
	}
	if record == nil || !record.ResendPending() {
		logger.Debug("No resend pending, re-presenting current code")
		return nil
	}

	account := accountFromEvent(event)
	code, err := e.Generator.Generate(account.PhoneNumber)
	if err != nil {
		return err
	}

	if err = e.dispatch(ctx, logger, event, account, code); err != nil {
		return err
	}

	applied, err := e.Sessions.MarkOTPSent(ctx, event.UserName, code)
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent invocation fulfilled the same resend first; its code
		// stays active.
		logger.Warn("Resend already fulfilled by a concurrent invocation")
	}
	return nil
}

func (e *Engine) dispatch(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
	account identity.Account,
	code string,
) error {
	if e.Generator.IsTestIdentity(account.PhoneNumber) {
		logger.Info("Skipping dispatch for test identity")
		return nil
	}

	suppressSMS := false
	if privileged, err := e.Identity.IsPrivileged(ctx, event.UserPoolID, event.UserName); err != nil {
		return err
	} else if privileged {
		suppressSMS = true
	}

	if err := e.Dispatcher.Send(ctx, account, code, suppressSMS); err != nil {
		return err
	}

	events.Publish(e.Publisher, events.AuthEvent{
		Kind:     events.KindOTPSent,
		UserName: event.UserName,
	})
	return nil
}
