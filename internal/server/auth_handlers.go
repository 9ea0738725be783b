package server

import (
	"fmt"
	"strconv"
	"time"

	"waveline/internal/models"
	"waveline/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim. Every verification site checks
// the claim so tokens cannot be swapped between flows.
const (
	tokenTypeAccess       = "access_token"
	tokenTypeRefresh      = "refresh_token"
	tokenTypeVerification = "email_verification"
	tokenTypeReset        = "password_reset"
)

// generateToken creates a signed JWT of the given type for the user.
func (s *Server) generateToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"type":     tokenType,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// parseTypedToken validates a token and enforces the expected "type" claim.
// It returns the subject user ID.
func (s *Server) parseTypedToken(tokenString, expectedType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewInvalidTokenError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewInvalidTokenError("Invalid token claims")
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, models.NewInvalidTokenError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, models.NewInvalidTokenError("Invalid token audience")
	}
	if tokenType, typeOk := claims["type"].(string); !typeOk || tokenType != expectedType {
		return 0, models.NewInvalidTokenError("Invalid token type")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewInvalidTokenError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewInvalidTokenError("Invalid user ID in token")
	}
	return uint(userID), nil
}

func (s *Server) accessTokenTTL() time.Duration {
	return time.Duration(s.config.AccessTokenMin) * time.Minute
}

func (s *Server) refreshTokenTTL() time.Duration {
	return time.Duration(s.config.RefreshTokenHrs) * time.Hour
}

// issueTokenPair creates and persists an access/refresh token pair.
func (s *Server) issueTokenPair(c *fiber.Ctx, user *models.User) (fiber.Map, error) {
	access, err := s.generateToken(user.ID, user.Username, tokenTypeAccess, s.accessTokenTTL())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.generateToken(user.ID, user.Username, tokenTypeRefresh, s.refreshTokenTTL())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	expiresAt := time.Now().Add(s.refreshTokenTTL())
	if err := s.authService.StoreRefreshToken(c.Context(), user.ID, refresh, expiresAt); err != nil {
		return nil, err
	}
	return fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	}, nil
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Create a user account and send a verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration request"
// @Success 201 {object} models.User
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if token, tokenErr := s.generateToken(user.ID, user.Username, tokenTypeVerification, 24*time.Hour); tokenErr == nil {
		s.mail.SendVerification(user.Email, token)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Registration successful, check your email to verify the account",
	})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticate by email or username and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{identifier=string,password=string} true "Login credentials"
// @Success 200 {object} object{access_token=string,refresh_token=string}
// @Failure 403 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Authenticate(c.Context(), req.Identifier, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	tokens, err := s.issueTokenPair(c, user)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	tokens["user"] = user
	return c.JSON(tokens)
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh the token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh_token=string} true "Refresh request"
// @Success 200 {object} object{access_token=string,refresh_token=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	if _, err := s.parseTypedToken(req.RefreshToken, tokenTypeRefresh); err != nil {
		return models.RespondWithAppError(c, err)
	}
	user, err := s.authService.ConsumeRefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	tokens, err := s.issueTokenPair(c, user)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tokens)
}

// Logout handles POST /api/auth/logout
// @Summary Log out and revoke refresh tokens
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if err := s.authService.Logout(c.Context(), userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// VerifyEmail handles POST /api/auth/verify-email
// @Summary Verify an email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Verification token"
// @Success 200 {object} models.User
// @Failure 400 {object} object{error=string}
// @Router /auth/verify-email [post]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("token is required"))
	}

	userID, err := s.parseTypedToken(req.Token, tokenTypeVerification)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	user, err := s.authService.VerifyEmail(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.mail.SendVerified(user.Email)
	return c.JSON(fiber.Map{
		"user":    user,
		"message": "Email verified",
	})
}

// ResendVerification handles POST /api/auth/resend-verification
// @Summary Resend the verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{message=string}
// @Router /auth/resend-verification [post]
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("email is required"))
	}

	// Respond uniformly whether or not the account exists.
	user, err := s.authService.FindByEmail(c.Context(), req.Email)
	if err == nil && user != nil && !user.IsVerified {
		if token, tokenErr := s.generateToken(user.ID, user.Username, tokenTypeVerification, 24*time.Hour); tokenErr == nil {
			s.mail.SendVerification(user.Email, token)
		}
	}
	return c.JSON(fiber.Map{"message": "If the account exists, a verification email was sent"})
}

// ForgotPassword handles POST /api/auth/forgot-password
// @Summary Request a password reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{message=string}
// @Router /auth/forgot-password [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("email is required"))
	}

	user, err := s.authService.FindByEmail(c.Context(), req.Email)
	if err == nil && user != nil && user.IsActive {
		if token, tokenErr := s.generateToken(user.ID, user.Username, tokenTypeReset, time.Hour); tokenErr == nil {
			s.mail.SendPasswordReset(user.Email, token)
		}
	}
	return c.JSON(fiber.Map{"message": "If the account exists, a password reset email was sent"})
}

// ResetPassword handles POST /api/auth/reset-password
// @Summary Reset the password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string,password=string} true "Reset request"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /auth/reset-password [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("token and password are required"))
	}

	userID, err := s.parseTypedToken(req.Token, tokenTypeReset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if err := s.authService.ResetPassword(c.Context(), userID, req.Password); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if user, lookupErr := s.userRepo.GetByID(c.Context(), userID); lookupErr == nil {
		s.mail.SendPasswordChanged(user.Email)
	}
	return c.JSON(fiber.Map{"message": "Password has been reset"})
}
