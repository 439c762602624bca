package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// newTestService builds an AuthService over an in-memory database. The
// bcrypt cost is lowered to keep the test suite fast.
func newTestService(t *testing.T) *AuthService {
	t.Helper()

	db := setupTestDB(t)
	repo := NewUserRepository(db)
	hasher := &PasswordHasher{cost: bcrypt.MinCost}
	manager := NewJWTManager(DefaultJWTConfig())

	return NewAuthService(repo, hasher, manager)
}

func TestAuthService_Register(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Register() did not assign an ID")
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}
	if user.PasswordHash == "password123" {
		t.Error("Register() stored the plaintext password")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "empty username",
			username: "",
			password: "password123",
			wantErr:  ErrUsernameRequired,
		},
		{
			name:     "username too long",
			username: strings.Repeat("a", 151),
			password: "password123",
			wantErr:  ErrUsernameTooLong,
		},
		{
			name:     "password too short",
			username: "alice",
			password: "1234567",
			wantErr:  ErrWeakPassword,
		},
		{
			name:     "password too long",
			username: "alice",
			password: strings.Repeat("a", 73),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := service.Register(ctx, "alice", "otherpassword")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate error = %v, want ErrUserExists", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tokens, err := service.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("Login() returned empty tokens")
	}

	// The access token must identify the user
	claims, err := service.ValidateToken(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("claims.Username = %q, want %q", claims.Username, "alice")
	}
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown user and wrong password must yield the same error so that
	// callers cannot probe which usernames exist.
	_, unknownErr := service.Login(ctx, "nobody", "password123")
	_, wrongErr := service.Login(ctx, "alice", "wrongpassword")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("login failure causes are distinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tokens, err := service.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		accessToken, expiresIn, err := service.Refresh(ctx, tokens.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if expiresIn <= 0 {
			t.Errorf("Refresh() expiresIn = %d, want > 0", expiresIn)
		}

		claims, err := service.ValidateToken(ctx, accessToken)
		if err != nil {
			t.Fatalf("ValidateToken() on refreshed token error = %v", err)
		}
		if claims.Username != "alice" {
			t.Errorf("claims.Username = %q, want %q", claims.Username, "alice")
		}
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		_, _, err := service.Refresh(ctx, tokens.AccessToken)
		if err == nil {
			t.Error("Refresh() should reject an access token")
		}
	})

	t.Run("malformed refresh token", func(t *testing.T) {
		_, _, err := service.Refresh(ctx, "not-a-token")
		if err == nil {
			t.Error("Refresh() should reject a malformed token")
		}
	})

	t.Run("deleted user is an invalid token, not a store fault", func(t *testing.T) {
		user, err := service.repo.FindByUsername("alice")
		if err != nil {
			t.Fatalf("FindByUsername() error = %v", err)
		}
		if err := service.repo.db.Delete(user).Error; err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		_, _, err = service.Refresh(ctx, tokens.RefreshToken)
		if err == nil {
			t.Fatal("Refresh() should fail for a deleted user")
		}
		if !strings.Contains(err.Error(), "invalid refresh token") {
			t.Errorf("Refresh() error = %v, want an invalid-refresh-token cause", err)
		}
	})
}

func TestAuthService_ValidateToken_RejectsRefreshToken(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tokens, err := service.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := service.ValidateToken(ctx, tokens.RefreshToken); err == nil {
		t.Error("ValidateToken() should reject a refresh token used as an access token")
	}
}
