package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stepauth/stepauth/internal/helpers"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BodyKey carries the decoded and validated request body.
type BodyKey struct{}

// Validate decodes the request body into T and validates its struct tags,
// rejecting the request before the handler runs.
func Validate[T any](next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			helpers.RespondWithError(w, http.StatusBadRequest, []string{"INVALID_REQUEST_BODY"})
			return
		}

		if err := validate.Struct(body); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				helpers.RespondWithError(w, http.StatusBadRequest, []string{"INVALID_REQUEST_BODY"})
				return
			}

			codes := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				codes = append(codes, fmt.Sprintf("INVALID_FIELD_%s", strings.ToUpper(fieldError.Field())))
			}
			helpers.RespondWithError(w, http.StatusBadRequest, codes)
			return
		}

		ctx := context.WithValue(r.Context(), BodyKey{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

// GetBody returns the validated body placed in the context by Validate.
func GetBody[T any](r *http.Request) T {
	body, _ := r.Context().Value(BodyKey{}).(T)
	return body
}
