package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/delivery"
	apierrors "github.com/stepauth/stepauth/internal/errors"
	"github.com/stepauth/stepauth/internal/events"
	"github.com/stepauth/stepauth/internal/helpers"
	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/messaging"
	m "github.com/stepauth/stepauth/internal/middlewares"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/otp"
	"github.com/stepauth/stepauth/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// resetOTPLength is longer than the login code; the reset flow has no
// surrounding transcript limiting guesses.
const resetOTPLength = 6

// PasswordResetService owns the out-of-band reset flow: a short-lived code
// delivered to the account's contact points, exchanged for a new credential.
type PasswordResetService struct {
	Resets     store.IResetStore
	Identity   identity.IIdentity
	Dispatcher delivery.IDispatcher
	Publisher  messaging.IPublisher
	ResetTTL   time.Duration
}

func (s PasswordResetService) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(m.Validate[models.PasswordResetInitiateBody]).Post("/", s.Initiate)
	r.With(m.Validate[models.PasswordResetVerifyBody]).Post("/verify", s.Verify)
	return r
}

// Initiate stores a fresh reset code and delivers it best-effort. The record
// is written before dispatch so a delivery hiccup never strands the user
// with a code that was sent but not stored.
func (s PasswordResetService) Initiate(w http.ResponseWriter, r *http.Request) {
	logger := m.GetLogger(r)
	body := m.GetBody[models.PasswordResetInitiateBody](r)

	// An unknown user is deliberately not distinguished from any other
	// lookup failure: initiate is unauthenticated, and a 404 here would be
	// an account-existence oracle.
	account, err := s.Identity.GetAccount(r.Context(), body.AccountScope, body.UserName)
	if err != nil {
		logger.Error("Failed to load account", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError, []string{apierrors.ErrInternalServer})
		return
	}

	code, err := otp.Random(resetOTPLength)
	if err != nil {
		logger.Error("Failed to generate reset code", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError, []string{apierrors.ErrInternalServer})
		return
	}

	record := models.ResetRecord{
		OTP:       code,
		ExpiresAt: time.Now().UTC().Add(s.ResetTTL),
	}
	if err = s.Resets.PutReset(r.Context(), body.UserName, record, s.ResetTTL); err != nil {
		logger.Error("Failed to store reset record", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError, []string{apierrors.ErrInternalServer})
		return
	}

	s.Dispatcher.SendBestEffort(r.Context(), account, code)

	events.Publish(s.Publisher, events.AuthEvent{
		Kind:     events.KindPasswordResetStart,
		UserName: body.UserName,
	})

	helpers.RespondWithJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Password reset code sent",
	})
}

// Verify exchanges a valid reset code for a new credential. Wrong and
// expired codes get the same uniform rejection; the record stays in place
// until either a successful exchange or its TTL.
func (s PasswordResetService) Verify(w http.ResponseWriter, r *http.Request) {
	logger := m.GetLogger(r)
	body := m.GetBody[models.PasswordResetVerifyBody](r)

	if len(body.NewPassword) < configuration.MinPasswordLength {
		helpers.RespondWithError(w, http.StatusBadRequest, []string{apierrors.ErrWeakPassword})
		return
	}

	record, err := s.Resets.GetReset(r.Context(), body.UserName)
	if err != nil {
		logger.Error("Failed to load reset record", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError, []string{apierrors.ErrInternalServer})
		return
	}
	if record == nil || record.Expired(time.Now().UTC()) || record.OTP != body.OTP {
		helpers.RespondWithError(w, http.StatusBadRequest, []string{apierrors.ErrInvalidOTP})
		return
	}

	err = s.Identity.SetPassword(r.Context(), body.AccountScope, body.UserName, body.NewPassword)
	switch {
	case errors.Is(err, identity.ErrPasswordPolicy):
		helpers.RespondWithError(w, http.StatusBadRequest, []string{apierrors.ErrPasswordPolicy})
		return
	case errors.Is(err, identity.ErrUserNotFound):
		helpers.RespondWithError(w, http.StatusNotFound, []string{apierrors.ErrUserNotFound})
		return
	case err != nil:
		logger.Error("Failed to set new password", zap.Error(err))
		helpers.RespondWithError(w, http.StatusInternalServerError, []string{apierrors.ErrInternalServer})
		return
	}

	if err = s.Resets.DeleteReset(r.Context(), body.UserName); err != nil {
		// The record would die by TTL anyway; the reset itself succeeded.
		logger.Warn("Failed to delete consumed reset record", zap.Error(err))
	}

	events.Publish(s.Publisher, events.AuthEvent{
		Kind:     events.KindPasswordResetDone,
		UserName: body.UserName,
	})

	helpers.RespondWithJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Password updated",
	})
}
