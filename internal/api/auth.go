package api

import (
	"context"
	"fmt"

	"github.com/aviravastra/storefront/internal/apiclient"
)

type AuthAPI struct {
	client *apiclient.Client
}

// GoogleAuth exchanges a Google identity credential for a customer token
func (a *AuthAPI) GoogleAuth(ctx context.Context, credential string) (*AuthResponse, error) {
	if credential == "" {
		return nil, fmt.Errorf("google credential is required")
	}

	var res AuthResponse
	body := map[string]string{"credential": credential}
	if err := a.client.Post(ctx, "/auth/google", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	return &res, nil
}

// AdminLogin authenticates a back office user.
// The endpoint sits outside /admin so that a rejected password does not end an existing admin session.
func (a *AuthAPI) AdminLogin(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.client.Post(ctx, "/auth/admin-login", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	return &res, nil
}

// Me returns the user for the current customer token
func (a *AuthAPI) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
