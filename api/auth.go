package api

import (
	"context"

	"github.com/opencustody/consolekit/claims"
	"github.com/opencustody/consolekit/httpclient"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/session"
)

// AuthService drives sign-in, the optional second-factor step-up, and
// logout. Token refresh is handled transparently by the interceptor chain
// and never needs to be called explicitly.
type AuthService struct {
	client *httpclient.Client
	store  *session.Store
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type secondFactorRequest struct {
	Code string `json:"code"`
}

// SignInResult reports whether the issued token is a full session or an
// intermediate step-up token awaiting a one-time code.
type SignInResult struct {
	RequiresSecondFactor bool
}

// SignIn exchanges credentials for a token pair and stores it. When the
// server issues a second-factor token, the session is held in the
// validating state until SubmitCode completes it.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	var pair tokenPair
	if err := s.client.Post(ctx, "auth/signin", signInRequest{Email: email, Password: password}, &pair); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return nil, errors.Wrapf(errors.ErrInvalidCredentials, "[AuthService.SignIn] %v", err)
		}
		return nil, errors.Wrapf(err, "[AuthService.SignIn] signin call")
	}
	if err := s.store.LogIn(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, errors.Wrapf(err, "[AuthService.SignIn] store.LogIn")
	}

	result := &SignInResult{}
	if c, err := claims.Parse(pair.AccessToken); err == nil && c.SecondFactor() {
		result.RequiresSecondFactor = true
	}
	return result, nil
}

// SubmitCode completes a step-up sign-in with the one-time code, replacing
// the intermediate token pair with the full session.
func (s *AuthService) SubmitCode(ctx context.Context, code string) error {
	snapshot := s.store.Snapshot()
	if !snapshot.IsValidating {
		return errors.Wrapf(errors.ErrSecondFactor, "[AuthService.SubmitCode] no step-up in progress")
	}

	var pair tokenPair
	if err := s.client.Post(ctx, "auth/signin/2fa", secondFactorRequest{Code: code}, &pair); err != nil {
		return errors.Wrapf(err, "[AuthService.SubmitCode] second factor call")
	}
	if err := s.store.LogIn(pair.AccessToken, pair.RefreshToken); err != nil {
		return errors.Wrapf(err, "[AuthService.SubmitCode] store.LogIn")
	}
	return nil
}

// Logout tells the server to invalidate the session and clears the local
// store. The local session is cleared even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	callErr := s.client.Post(ctx, "logout", nil, nil)
	if err := s.store.LogOut(); err != nil {
		return errors.Wrapf(err, "[AuthService.Logout] store.LogOut")
	}
	if callErr != nil {
		return errors.Wrapf(callErr, "[AuthService.Logout] logout call")
	}
	return nil
}
