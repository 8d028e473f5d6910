package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

type AuthUseCase interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Authenticated(ctx context.Context) bool
}

type authUseCase struct {
	api    clients.StoreAPI
	tokens domain.TokenRepository
	now    func() time.Time
	log    *logrus.Logger
}

func NewAuthUseCase(api clients.StoreAPI, tokens domain.TokenRepository, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		api:    api,
		tokens: tokens,
		now:    time.Now,
		log:    logger,
	}
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	token, err := uc.api.Login(ctx, email, password)
	if err != nil {
		var httpErr *clients.HTTPError
		if errors.As(err, &httpErr) {
			uc.log.Warnf("Use Case: Login rejected for %s (status %d)", email, httpErr.StatusCode)
			return domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Login request failed for %s: %v", email, err)
		return fmt.Errorf("login failed: %w", err)
	}
	if token == "" {
		uc.log.Warnf("Use Case: Login for %s returned no token", email)
		return domain.ErrInvalidCredentials
	}

	if err := uc.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	uc.log.Infof("Use Case: User %s logged in", email)
	return nil
}

func (uc *authUseCase) Logout(ctx context.Context) error {
	if err := uc.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	uc.log.Info("Use Case: User logged out")
	return nil
}

// Authenticated reports whether a session token is stored. JWTs whose exp
// claim has passed count as logged out; the signature is not checked here
// because the backend enforces it.
func (uc *authUseCase) Authenticated(ctx context.Context) bool {
	token, err := uc.tokens.GetToken(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Could not read session token: %v", err)
		return false
	}
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if !claims.VerifyExpiresAt(uc.now().Unix(), false) {
		uc.log.Info("Use Case: Session token expired")
		return false
	}
	return true
}
