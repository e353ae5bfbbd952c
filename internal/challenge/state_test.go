package challenge

import (
	"testing"

	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name   string
		rounds []models.SessionRound
		want   State
	}{
		{
			name:   "no rounds yet",
			rounds: nil,
			want:   StateAwaitingFlow,
		},
		{
			name:   "flow selected",
			rounds: []models.SessionRound{round(configuration.StepSelectAuthFlow, true)},
			want:   StateFlowSelected,
		},
		{
			name:   "flow rejected",
			rounds: []models.SessionRound{round(configuration.StepSelectAuthFlow, false)},
			want:   StateFlowRejected,
		},
		{
			name: "password verified",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepPasswordChallenge, true),
			},
			want: StatePasswordVerified,
		},
		{
			name: "password rejected",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepPasswordChallenge, false),
			},
			want: StatePasswordRejected,
		},
		{
			name: "otp verified after password",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepPasswordChallenge, true),
				round(configuration.StepOTPChallenge, true),
			},
			want: StateOTPVerified,
		},
		{
			name: "otp verified without password",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepOTPChallenge, true),
			},
			want: StateOTPVerified,
		},
		{
			name: "otp retry after wrong guess",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepOTPChallenge, false),
			},
			want: StateAwaitingOTPRetry,
		},
		{
			name: "otp retry after several wrong guesses",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepOTPChallenge, false),
				round(configuration.StepOTPChallenge, false),
				round(configuration.StepOTPChallenge, false),
			},
			want: StateAwaitingOTPRetry,
		},
		{
			name: "flow selection not in first position",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepSelectAuthFlow, true),
			},
			want: StateUnknownStep,
		},
		{
			name: "password not in second position",
			rounds: []models.SessionRound{
				round(configuration.StepSelectAuthFlow, true),
				round(configuration.StepOTPChallenge, false),
				round(configuration.StepPasswordChallenge, true),
			},
			want: StateUnknownStep,
		},
		{
			name:   "unrecognized step tag",
			rounds: []models.SessionRound{round("CAPTCHA_CHALLENGE", true)},
			want:   StateUnknownStep,
		},
		{
			name: "round owned by another challenge",
			rounds: []models.SessionRound{{
				ChallengeName:   "SRP_A",
				ChallengeResult: true,
			}},
			want: StateForeignChallenge,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, DeriveState(test.rounds))
		})
	}
}
