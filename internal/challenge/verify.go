package challenge

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/stepauth/stepauth/internal/configuration"
	apierrors "github.com/stepauth/stepauth/internal/errors"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/store"

	"go.uber.org/zap"
)

// Verdict discriminates the semantically different outcomes an OTP round can
// produce. The pipeline only sees a boolean; the tag keeps the distinction
// for logging and for callers inside this service.
type Verdict int

const (
	VerdictCorrect Verdict = iota
	VerdictWrongAnswer
	VerdictResendAccepted
	VerdictResendDenied
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "CORRECT"
	case VerdictWrongAnswer:
		return "WRONG_ANSWER"
	case VerdictResendAccepted:
		return "RESEND_ACCEPTED"
	default:
		return "RESEND_DENIED"
	}
}

// Correct maps the tagged verdict onto the pipeline's boolean. A resend
// request is always reported as incorrect so the state machine loops back to
// the issuance phase.
func (v Verdict) Correct() bool {
	return v == VerdictCorrect
}

// Verify is the answer phase: decide correctness of the submitted answer
// against the current challenge and apply the associated counter mutation.
// Mutations are atomic against the store; a call either fully applies or
// fully fails. VerdictResendDenied is surfaced together with a hard error
// rather than as an ordinary negative result.
func (e *Engine) Verify(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
) (Verdict, error) {
	metadata := event.Request.PrivateChallengeParameters["challengeMetadata"]
	answer := event.Request.ChallengeAnswer
	userName := event.UserName

	switch metadata {
	case configuration.StepSelectAuthFlow:
		return e.verifyFlowSelection(ctx, logger, userName, answer)

	case configuration.StepPasswordChallenge:
		return e.verifyPassword(ctx, logger, event, answer)

	case configuration.StepOTPChallenge:
		return e.verifyOTP(ctx, logger, userName, answer)

	default:
		logger.Warn("Answer submitted for unknown challenge step",
			zap.String("metadata", metadata))
		return VerdictWrongAnswer, nil
	}
}

func (e *Engine) verifyFlowSelection(
	ctx context.Context,
	logger *zap.Logger,
	userName string,
	answer string,
) (Verdict, error) {
	flow := models.AuthFlow(answer)
	if !flow.Valid() {
		logger.Warn("Invalid auth flow selected", zap.String("answer", answer))
		return VerdictWrongAnswer, nil
	}

	record := models.SessionRecord{AuthFlow: flow}
	if err := e.Sessions.Put(ctx, userName, record); err != nil {
		return VerdictWrongAnswer, err
	}

	logger.Info("Auth flow selected", zap.String("flow", string(flow)))
	return VerdictCorrect, nil
}

func (e *Engine) verifyPassword(
	ctx context.Context,
	logger *zap.Logger,
	event models.ChallengeEvent,
	answer string,
) (Verdict, error) {
	if answer == "" {
		return VerdictWrongAnswer, nil
	}

	valid, err := e.Identity.VerifyPassword(ctx, event.UserPoolID, event.UserName, answer)
	if err != nil {
		return VerdictWrongAnswer, err
	}
	if !valid {
		logger.Info("Password rejected by identity backend")
		return VerdictWrongAnswer, nil
	}
	return VerdictCorrect, nil
}

func (e *Engine) verifyOTP(
	ctx context.Context,
	logger *zap.Logger,
	userName string,
	answer string,
) (Verdict, error) {
	record, err := e.Sessions.Get(ctx, userName)
	if err != nil {
		return VerdictWrongAnswer, err
	}
	if record == nil {
		// Expired or already terminated; an incorrect answer, not an error.
		logger.Info("OTP submitted without a session record")
		return VerdictWrongAnswer, nil
	}

	if answer == configuration.ResendSentinel {
		outcome, err := e.Sessions.IncrementResend(ctx, userName, configuration.MaxOTPResend)
		if err != nil {
			return VerdictWrongAnswer, err
		}

		switch outcome {
		case store.ResendDenied:
			logger.Warn("Resend denied, lockout threshold reached")
			return VerdictResendDenied,
				apierrors.NewAPIError(http.StatusTooManyRequests, apierrors.ReasonMaxOTPResendAttempts)
		case store.ResendNoSession:
			return VerdictWrongAnswer, nil
		default:
			logger.Info("Resend accepted")
			return VerdictResendAccepted, nil
		}
	}

	if answer != "" && record.OTP != "" &&
		subtle.ConstantTimeCompare([]byte(answer), []byte(record.OTP)) == 1 {
		logger.Info("Correct passcode entered")
		return VerdictCorrect, nil
	}

	if err = e.Sessions.IncrementAttempts(ctx, userName); err != nil {
		return VerdictWrongAnswer, err
	}
	logger.Info("Wrong passcode entered")
	return VerdictWrongAnswer, nil
}
