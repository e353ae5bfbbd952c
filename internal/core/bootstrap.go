package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stepauth/stepauth/internal/challenge"
	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/delivery"
	"github.com/stepauth/stepauth/internal/events"
	"github.com/stepauth/stepauth/internal/helpers"
	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/messaging"
	m "github.com/stepauth/stepauth/internal/middlewares"
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/otp"
	"github.com/stepauth/stepauth/internal/services"
	"github.com/stepauth/stepauth/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// StartAuditWorker subscribes the audit log consumer to the auth event
// stream.
func StartAuditWorker(subscriber messaging.ISubscriber) {
	go events.HandleEvents(subscriber.Subscribe())
	zap.L().Info("Started auth audit worker")
}

func StartHTTPServer(
	config models.Configuration,
	sessions store.ISessionStore,
	resets store.IResetStore,
	id identity.IIdentity,
	dispatcher delivery.IDispatcher,
	publisher messaging.IPublisher,
) {
	engine := &challenge.Engine{
		Sessions:   sessions,
		Identity:   id,
		Dispatcher: dispatcher,
		Generator:  otp.NewGenerator(config.Delivery.TestIdentities),
		Publisher:  publisher,
	}

	r := chi.NewRouter()

	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(m.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/triggers", services.TriggerService{Engine: engine}.Routes())

	r.Mount("/auth/password-reset", services.PasswordResetService{
		Resets:     resets,
		Identity:   id,
		Dispatcher: dispatcher,
		Publisher:  publisher,
		ResetTTL:   configuration.ResetOTPTTLSeconds * time.Second,
	}.Routes())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		helpers.RespondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "ok"})
	})

	zap.L().Info("HTTP server starting", zap.Int("port", config.App.Port))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.App.Port),
		Handler:      otelhttp.NewHandler(r, configuration.AppName),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		zap.L().Error("Failed to start the app", zap.Error(err))
	}
}
