package challenge

import (
	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/models"
)

// State is the login position derived once from the round transcript. Every
// phase dispatches on it instead of pattern-matching transcript shapes in
// place.
type State int

const (
	// StateAwaitingFlow: no rounds yet, flow selection comes first.
	StateAwaitingFlow State = iota
	// StateFlowSelected: flow chosen; the next challenge depends on the
	// session record, which the transcript alone cannot tell.
	StateFlowSelected
	// StatePasswordVerified: password accepted, first OTP issuance pending.
	StatePasswordVerified
	// StateAwaitingOTPRetry: last OTP round was negative (wrong guess or
	// accepted resend, retried the same way).
	StateAwaitingOTPRetry
	// StateOTPVerified: last OTP round was positive. Terminal success.
	StateOTPVerified
	// StateFlowRejected: flow selection failed. Terminal.
	StateFlowRejected
	// StatePasswordRejected: password failed. Terminal, no retry.
	StatePasswordRejected
	// StateUnknownStep: a recognized round carries an unrecognized step tag.
	StateUnknownStep
	// StateForeignChallenge: a round was produced by a challenge this
	// service does not own.
	StateForeignChallenge
)

func (s State) String() string {
	switch s {
	case StateAwaitingFlow:
		return "AWAITING_FLOW"
	case StateFlowSelected:
		return "FLOW_SELECTED"
	case StatePasswordVerified:
		return "PASSWORD_VERIFIED"
	case StateAwaitingOTPRetry:
		return "AWAITING_OTP_RETRY"
	case StateOTPVerified:
		return "OTP_VERIFIED"
	case StateFlowRejected:
		return "FLOW_REJECTED"
	case StatePasswordRejected:
		return "PASSWORD_REJECTED"
	case StateUnknownStep:
		return "UNKNOWN_STEP"
	default:
		return "FOREIGN_CHALLENGE"
	}
}

// DeriveState maps a transcript to its login state. The transcript is owned
// by the calling pipeline; nothing beyond round order, step tags and results
// may be assumed.
func DeriveState(rounds []models.SessionRound) State {
	if len(rounds) == 0 {
		return StateAwaitingFlow
	}

	last := rounds[len(rounds)-1]
	if last.ChallengeName != configuration.CustomChallengeName {
		return StateForeignChallenge
	}

	switch last.ChallengeMetadata {
	case configuration.StepSelectAuthFlow:
		if len(rounds) != 1 {
			return StateUnknownStep
		}
		if last.ChallengeResult {
			return StateFlowSelected
		}
		return StateFlowRejected

	case configuration.StepPasswordChallenge:
		if len(rounds) != 2 {
			return StateUnknownStep
		}
		if last.ChallengeResult {
			return StatePasswordVerified
		}
		return StatePasswordRejected

	case configuration.StepOTPChallenge:
		if last.ChallengeResult {
			return StateOTPVerified
		}
		return StateAwaitingOTPRetry

	default:
		return StateUnknownStep
	}
}
