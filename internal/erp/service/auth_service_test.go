package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
			Issuer:             "artel-erp",
		},
	}
	return NewAuthService(repos.User, nil, cfg)
}

func TestLoginWithValidCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ivan", "secret-pass-1", "Иван", "ivan@example.com"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	pair, user, err := svc.Login(ctx, "ivan", "secret-pass-1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens issued")
	}
	if user.Username != "ivan" {
		t.Errorf("expected user ivan, got %s", user.Username)
	}
	if user.LastLoginAt == nil {
		// TouchLastLogin runs after the user was loaded; re-read.
		refreshed, _ := svc.Me(ctx, user.ID)
		if refreshed.LastLoginAt == nil {
			t.Error("expected last_login_at to be stamped")
		}
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	svc.Register(ctx, "ivan", "secret-pass-1", "Иван", "")

	if _, _, err := svc.Login(ctx, "ivan", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "secret-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, _ := svc.Register(ctx, "ivan", "secret-pass-1", "Иван", "")
	user.Status = entity.UserStatusInactive
	if err := svc.userRepo.Update(ctx, user); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ivan", "secret-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	svc.Register(ctx, "ivan", "secret-pass-1", "Иван", "")
	pair, _, err := svc.Login(ctx, "ivan", "secret-pass-1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
