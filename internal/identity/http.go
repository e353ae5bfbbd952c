package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stepauth/stepauth/internal/models"

	"github.com/go-resty/resty/v2"
)

// HTTPIdentity adapts a generic identity backend exposing a small REST
// surface. Used in deployments that front a non-Cognito directory.
type HTTPIdentity struct {
	client          *resty.Client
	privilegedGroup string
}

func NewHTTPIdentity(config models.HTTPIdentityConfiguration, privilegedGroup string) *HTTPIdentity {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Authorization", "Bearer "+config.APIKey).
		SetTimeout(10 * time.Second)

	return &HTTPIdentity{client: client, privilegedGroup: privilegedGroup}
}

type verifyCredentialsRequest struct {
	Scope    string `json:"scope,omitempty"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type verifyCredentialsResponse struct {
	Valid bool `json:"valid"`
}

type accountResponse struct {
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
	Groups      []string `json:"groups"`
}

type setPasswordRequest struct {
	Scope    string `json:"scope,omitempty"`
	Password string `json:"password"`
}

func (h *HTTPIdentity) VerifyPassword(
	ctx context.Context,
	scope, userName, password string,
) (bool, error) {
	var result verifyCredentialsResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(verifyCredentialsRequest{Scope: scope, UserName: userName, Password: password}).
		SetResult(&result).
		Post("/v1/credentials/verify")
	if err != nil {
		return false, fmt.Errorf("failed to verify credentials: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return result.Valid, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("credential verification returned status %d", resp.StatusCode())
	}
}

func (h *HTTPIdentity) getAccount(ctx context.Context, scope, userName string) (accountResponse, error) {
	var result accountResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("scope", scope).
		SetResult(&result).
		Get("/v1/accounts/" + userName)
	if err != nil {
		return accountResponse{}, fmt.Errorf("failed to fetch account: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return result, nil
	case http.StatusNotFound:
		return accountResponse{}, ErrUserNotFound
	default:
		return accountResponse{}, fmt.Errorf("account lookup returned status %d", resp.StatusCode())
	}
}

func (h *HTTPIdentity) GetAccount(ctx context.Context, scope, userName string) (Account, error) {
	account, err := h.getAccount(ctx, scope, userName)
	if err != nil {
		return Account{}, err
	}
	return Account{Email: account.Email, PhoneNumber: account.PhoneNumber}, nil
}

func (h *HTTPIdentity) SetPassword(ctx context.Context, scope, userName, password string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(setPasswordRequest{Scope: scope, Password: password}).
		Put("/v1/accounts/" + userName + "/password")
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusBadRequest:
		return ErrPasswordPolicy
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("password update returned status %d", resp.StatusCode())
	}
}

func (h *HTTPIdentity) IsPrivileged(ctx context.Context, scope, userName string) (bool, error) {
	if h.privilegedGroup == "" {
		return false, nil
	}

	account, err := h.getAccount(ctx, scope, userName)
	if err != nil {
		return false, err
	}
	for _, group := range account.Groups {
		if strings.Contains(group, h.privilegedGroup) {
			return true, nil
		}
	}
	return false, nil
}
