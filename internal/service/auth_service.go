package service

import (
	"context"
	"strings"
	"time"

	"waveline/internal/models"
	"waveline/internal/repository"
	"waveline/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	now       func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	now func() time.Time,
) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		now:       now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves the identifier as an email when it contains an "@",
// otherwise as a username, and checks account state before the password.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	if !user.IsActive {
		return nil, models.NewNotAllowedError("Account is deactivated")
	}
	if !user.IsVerified {
		return nil, models.NewNotAllowedError("Email is not verified")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewValidationError("Invalid password!")
	}
	return user, nil
}

// VerifyEmail marks the account verified and creates the empty profile row.
// Re-verification is harmless.
func (s *AuthService) VerifyEmail(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
			return nil, err
		}
		user.IsVerified = true
	}
	if err := s.userRepo.CreateProfile(ctx, &models.Profile{UserID: userID}); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password, rejecting reuse of the current one,
// and revokes every outstanding refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(newPassword)) == nil {
		return models.NewValidationError("New password must differ from the current password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// FindByEmail supports the forgot-password flow. A nil user is not an error
// so handlers can answer uniformly whether or not the account exists.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// StoreRefreshToken persists an issued refresh token for later revocation.
func (s *AuthService) StoreRefreshToken(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	return s.tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// ConsumeRefreshToken validates a refresh token against the store and rotates
// it out. The caller issues the replacement pair.
func (s *AuthService) ConsumeRefreshToken(ctx context.Context, token string) (*models.User, error) {
	rt, err := s.tokenRepo.GetActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil || rt.ExpiresAt.Before(s.now()) {
		return nil, models.NewInvalidTokenError("Refresh token is invalid or expired")
	}
	user, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotAllowedError("Account is deactivated")
	}
	if err := s.tokenRepo.Revoke(ctx, token); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes all refresh tokens for the user.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// PurgeExpiredTokens removes refresh tokens past their expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, s.now())
}
