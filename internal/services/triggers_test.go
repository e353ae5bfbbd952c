package services

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stepauth/stepauth/internal/challenge"
	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/delivery"
	apierrors "github.com/stepauth/stepauth/internal/errors"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/otp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTriggerService(sessions *mockSessionStore) TriggerService {
	return TriggerService{
		Engine: &challenge.Engine{
			Sessions:   sessions,
			Identity:   &mockIdentity{},
			Dispatcher: &mockDispatcher{},
			Generator:  otp.NewGenerator(nil),
		},
	}
}

func TestDefineAuthChallengeEchoesEvent(t *testing.T) {
	service := newTriggerService(newMockSessionStore())

	event := models.ChallengeEvent{UserName: "alice"}
	recorder := postJSON(t, service.Routes(), "/define-auth-challenge", event)

	require.Equal(t, http.StatusOK, recorder.Code)

	var echoed models.ChallengeEvent
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &echoed))
	assert.Equal(t, "alice", echoed.UserName)
	assert.Equal(t, configuration.CustomChallengeName, echoed.Response.ChallengeName)
	assert.False(t, *echoed.Response.IssueTokens)
	assert.False(t, *echoed.Response.FailAuthentication)
}

func TestCreateAuthChallengePresentsFlowSelection(t *testing.T) {
	service := newTriggerService(newMockSessionStore())

	recorder := postJSON(t, service.Routes(), "/create-auth-challenge",
		models.ChallengeEvent{UserName: "alice"})

	require.Equal(t, http.StatusOK, recorder.Code)

	var echoed models.ChallengeEvent
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &echoed))
	assert.Equal(t, configuration.StepSelectAuthFlow,
		echoed.Response.PublicChallengeParameters["challenge"])
}

func TestVerifyAuthChallengeReportsCorrectness(t *testing.T) {
	sessions := newMockSessionStore()
	sessions.records["alice"] = &models.SessionRecord{AuthFlow: models.FlowOTPOnly, OTP: "4821"}
	service := newTriggerService(sessions)

	event := models.ChallengeEvent{UserName: "alice"}
	event.Request.PrivateChallengeParameters = map[string]string{
		"challengeMetadata": configuration.StepOTPChallenge,
	}
	event.Request.ChallengeAnswer = "4821"

	recorder := postJSON(t, service.Routes(), "/verify-auth-challenge", event)

	require.Equal(t, http.StatusOK, recorder.Code)

	var echoed models.ChallengeEvent
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &echoed))
	require.NotNil(t, echoed.Response.AnswerCorrect)
	assert.True(t, *echoed.Response.AnswerCorrect)
}

func TestVerifyAuthChallengeDeniedResendIsTooManyRequests(t *testing.T) {
	sessions := newMockSessionStore()
	sessions.records["alice"] = &models.SessionRecord{
		AuthFlow:    models.FlowOTPOnly,
		OTP:         "4821",
		ResendCount: configuration.MaxOTPResend,
	}
	service := newTriggerService(sessions)

	event := models.ChallengeEvent{UserName: "alice"}
	event.Request.PrivateChallengeParameters = map[string]string{
		"challengeMetadata": configuration.StepOTPChallenge,
	}
	event.Request.ChallengeAnswer = configuration.ResendSentinel

	recorder := postJSON(t, service.Routes(), "/verify-auth-challenge", event)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "MAX_OTP_RESEND_ATTEMPTS_EXCEEDED")
}

func TestCreateAuthChallengeSurfacesDeliveryFailure(t *testing.T) {
	sessions := newMockSessionStore()
	sessions.records["alice"] = &models.SessionRecord{AuthFlow: models.FlowOTPOnly}
	service := TriggerService{
		Engine: &challenge.Engine{
			Sessions:   sessions,
			Identity:   &mockIdentity{},
			Dispatcher: &mockDispatcher{err: delivery.ErrAllChannelsFailed},
			Generator:  otp.NewGenerator(nil),
		},
	}

	event := models.ChallengeEvent{UserName: "alice"}
	event.Request.Session = []models.SessionRound{{
		ChallengeName:     configuration.CustomChallengeName,
		ChallengeResult:   true,
		ChallengeMetadata: configuration.StepSelectAuthFlow,
	}}

	recorder := postJSON(t, service.Routes(), "/create-auth-challenge", event)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apierrors.ErrDeliveryFailed)
}

func TestCreateAuthChallengeInternalFailure(t *testing.T) {
	service := newTriggerService(newMockSessionStore())

	// Terminal transcript: no challenge left to issue.
	event := models.ChallengeEvent{UserName: "alice"}
	event.Request.Session = []models.SessionRound{{
		ChallengeName:     configuration.CustomChallengeName,
		ChallengeResult:   true,
		ChallengeMetadata: configuration.StepOTPChallenge,
	}}

	recorder := postJSON(t, service.Routes(), "/create-auth-challenge", event)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "UNKNOWN_ERROR")
}

func TestTriggerEndpointsRejectAnonymousEvents(t *testing.T) {
	service := newTriggerService(newMockSessionStore())

	recorder := postJSON(t, service.Routes(), "/define-auth-challenge",
		models.ChallengeEvent{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
