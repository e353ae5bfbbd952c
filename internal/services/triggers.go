package services

import (
	"errors"
	"net/http"

	"github.com/stepauth/stepauth/internal/challenge"
	"github.com/stepauth/stepauth/internal/delivery"
	apierrors "github.com/stepauth/stepauth/internal/errors"
	"github.com/stepauth/stepauth/internal/helpers"
	m "github.com/stepauth/stepauth/internal/middlewares"
	"github.com/stepauth/stepauth/internal/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TriggerService exposes the three challenge phases as webhook endpoints for
// the identity pipeline. Each endpoint fills the event's response section and
// echoes the event back.
type TriggerService struct {
	Engine *challenge.Engine
}

func (s TriggerService) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(m.Validate[models.ChallengeEvent]).Post("/define-auth-challenge", s.DefineAuthChallenge)
	r.With(m.Validate[models.ChallengeEvent]).Post("/create-auth-challenge", s.CreateAuthChallenge)
	r.With(m.Validate[models.ChallengeEvent]).Post("/verify-auth-challenge", s.VerifyAuthChallenge)
	return r
}

func (s TriggerService) DefineAuthChallenge(w http.ResponseWriter, r *http.Request) {
	logger := m.GetLogger(r)
	event := m.GetBody[models.ChallengeEvent](r)

	response, err := s.Engine.Define(r.Context(), logger, event)
	if err != nil {
		respondTriggerError(w, logger, err)
		return
	}

	event.Response = response
	helpers.RespondWithJSON(w, http.StatusOK, event)
}

func (s TriggerService) CreateAuthChallenge(w http.ResponseWriter, r *http.Request) {
	logger := m.GetLogger(r)
	event := m.GetBody[models.ChallengeEvent](r)

	response, err := s.Engine.Create(r.Context(), logger, event)
	if err != nil {
		respondTriggerError(w, logger, err)
		return
	}

	event.Response = response
	helpers.RespondWithJSON(w, http.StatusOK, event)
}

func (s TriggerService) VerifyAuthChallenge(w http.ResponseWriter, r *http.Request) {
	logger := m.GetLogger(r)
	event := m.GetBody[models.ChallengeEvent](r)

	verdict, err := s.Engine.Verify(r.Context(), logger, event)
	if err != nil {
		respondTriggerError(w, logger, err)
		return
	}

	correct := verdict.Correct()
	event.Response.AnswerCorrect = &correct
	helpers.RespondWithJSON(w, http.StatusOK, event)
}

// respondTriggerError surfaces tagged failures with their own status and
// code; anything else is an internal error the pipeline retries.
func respondTriggerError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		helpers.RespondWithError(w, apiErr.Status, []string{apiErr.Code})
		return
	}

	if errors.Is(err, delivery.ErrAllChannelsFailed) {
		logger.Error("OTP delivery failed on every channel", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError,
			[]string{apierrors.ErrDeliveryFailed})
		return
	}

	logger.Error("Challenge phase failed", zap.Error(err))
	helpers.RespondWithError(w, http.StatusInternalServerError,
		[]string{apierrors.ReasonUnknownError})
}
