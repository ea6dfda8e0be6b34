package services

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/oauth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	verificationTokenBytes = 32
	resetTokenBytes        = 32
)

type AuthService interface {
	// Registration and email verification
	Register(ctx context.Context, request *RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, request *VerifyEmailRequest) (*AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (*RegisterResponse, error)

	// Sessions
	Login(ctx context.Context, request *LoginRequest, client *ClientInfo) (*AuthResponse, error)
	Logout(ctx context.Context, userID primitive.ObjectID, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)

	// Password management
	ChangePassword(ctx context.Context, userID primitive.ObjectID, request *ChangePasswordRequest) (*utils.TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request *ResetPasswordRequest) error

	// Social sign-in
	SocialAuthURL(provider, state string) (string, error)
	SocialLogin(ctx context.Context, provider string, request *SocialLoginRequest, client *ClientInfo) (*AuthResponse, error)

	// Authenticate resolves a bearer access token to an active user.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type AuthConfig struct {
	BcryptCost           int
	PasswordMinLength    int
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	FrontendURL          string
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,phone_number"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// ClientInfo describes where a login came from, for the notification email.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type RegisterResponse struct {
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requiresVerification,omitempty"`
	AlreadyVerified      bool   `json:"alreadyVerified,omitempty"`
	NextStep             string `json:"nextStep,omitempty"`
}

type AuthResponse struct {
	User            *models.PublicUser `json:"user,omitempty"`
	Tokens          *utils.TokenPair   `json:"tokens,omitempty"`
	AlreadyVerified bool               `json:"alreadyVerified,omitempty"`
}

type authService struct {
	userRepo      interfaces.UserRepository
	jwtManager    *utils.JWTManager
	notifications NotificationService
	config        AuthConfig
	providers     map[string]oauth.Provider
	logger        *logger.Logger
	now           func() time.Time
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	jwtManager *utils.JWTManager,
	notifications NotificationService,
	config AuthConfig,
	logger *logger.Logger,
	providers ...oauth.Provider,
) AuthService {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = 6
	}
	if config.VerificationTokenTTL <= 0 {
		config.VerificationTokenTTL = 24 * time.Hour
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = time.Hour
	}
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &authService{
		userRepo:      userRepo,
		jwtManager:    jwtManager,
		notifications: notifications,
		config:        config,
		providers:     byName,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *authService) Register(ctx context.Context, request *RegisterRequest) (*RegisterResponse, error) {
	if err := utils.ValidatePasswordStrength(request.Password, s.config.PasswordMinLength); err != nil {
		return nil, utils.NewValidationError([]utils.FieldError{{Field: "password", Message: err.Error()}})
	}

	email := utils.NormalizeEmail(request.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, utils.NewConflictError("Email already registered")
	} else if !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(request.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.config.VerificationTokenTTL)

	user := &models.User{
		FullName:               request.FullName,
		Email:                  email,
		Password:               hash,
		Phone:                  request.Phone,
		Role:                   models.UserRoleCustomer,
		IsActive:               true,
		EmailVerificationToken: utils.HashToken(token),
		EmailVerificationExp:   &expires,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if utils.IsKind(err, utils.KindConflict) {
			return nil, utils.NewConflictError("Email already registered")
		}
		return nil, err
	}

	s.sendVerification(ctx, user, token)
	s.logger.LogUserAction(user.ID, "register", map[string]interface{}{"email": utils.MaskEmail(email)})

	return &RegisterResponse{
		Email:                user.Email,
		RequiresVerification: true,
		NextStep:             "verify-email",
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, request *VerifyEmailRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(request.Email))
	if err != nil {
		return nil, err
	}

	if user.IsEmailVerified {
		return &AuthResponse{AlreadyVerified: true}, nil
	}

	if user.EmailVerificationToken == "" || user.EmailVerificationToken != utils.HashToken(request.Token) {
		return nil, utils.NewBadRequestError("Invalid verification link. Please try again.")
	}
	if user.EmailVerificationExp == nil || s.now().After(*user.EmailVerificationExp) {
		return nil, utils.NewBadRequestError("Verification link has expired. Please request a new one.")
	}

	now := s.now()
	err = s.userRepo.Update(ctx, user.ID, bson.M{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
		"last_login":                 now,
	})
	if err != nil {
		return nil, err
	}
	user.IsEmailVerified = true

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.Email(ctx, user.Email, models.TemplateWelcome, map[string]string{
		"name":        user.FullName,
		"frontendUrl": s.config.FrontendURL,
	}); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue welcome email")
	}

	return &AuthResponse{User: user.Public(), Tokens: tokens}, nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) (*RegisterResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if user.IsEmailVerified {
		return &RegisterResponse{Email: user.Email, AlreadyVerified: true}, nil
	}

	token, err := utils.GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.config.VerificationTokenTTL)

	err = s.userRepo.Update(ctx, user.ID, bson.M{
		"email_verification_token":   utils.HashToken(token),
		"email_verification_expires": expires,
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user, token)

	return &RegisterResponse{Email: user.Email, RequiresVerification: true, NextStep: "verify-email"}, nil
}

func (s *authService) Login(ctx context.Context, request *LoginRequest, client *ClientInfo) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(request.Email))
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("Account has been deactivated")
	}

	if !utils.CheckPassword(user.Password, request.Password) {
		s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{
			"user_id":    user.ID.Hex(),
			"ip_address": clientIP(client),
		})
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepo.Update(ctx, user.ID, bson.M{"last_login": now}); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	data := map[string]string{
		"name":      user.FullName,
		"time":      now.UTC().Format(time.RFC1123),
		"userAgent": "Unknown",
		"ipAddress": clientIP(client),
	}
	if client != nil && client.UserAgent != "" {
		data["userAgent"] = client.UserAgent
	}
	if err := s.notifications.Email(ctx, user.Email, models.TemplateLoginNotification, data); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue login notification")
	}

	s.logger.LogUserAction(user.ID, "login", nil)

	return &AuthResponse{User: user.Public(), Tokens: tokens}, nil
}

func (s *authService) Logout(ctx context.Context, userID primitive.ObjectID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.userRepo.RemoveRefreshToken(ctx, userID, utils.HashToken(refreshToken)); err != nil {
		return err
	}
	s.logger.LogUserAction(userID, "logout", nil)
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	if refreshToken == "" {
		return nil, utils.NewBadRequestError("Refresh token is required")
	}

	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := claims.ObjectID()
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid refresh token").Wrap(err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthorizedError("User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("Account has been deactivated")
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	rotated, err := s.userRepo.RotateRefreshToken(ctx, user.ID, utils.HashToken(refreshToken), utils.HashToken(tokens.RefreshToken))
	if err != nil {
		return nil, err
	}
	if !rotated {
		s.logger.LogSecurityEvent("refresh_token_reuse", "medium", map[string]interface{}{
			"user_id": user.ID.Hex(),
		})
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}

	return tokens, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, request *ChangePasswordRequest) (*utils.TokenPair, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(user.Password, request.CurrentPassword) {
		return nil, utils.NewUnauthorizedError("Current password is incorrect")
	}
	if err := utils.ValidatePasswordStrength(request.NewPassword, s.config.PasswordMinLength); err != nil {
		return nil, utils.NewValidationError([]utils.FieldError{{Field: "newPassword", Message: err.Error()}})
	}

	hash, err := utils.HashPassword(request.NewPassword, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.Update(ctx, user.ID, bson.M{"password": hash, "refresh_tokens": bson.A{}})
	if err != nil {
		return nil, err
	}

	s.logger.LogSecurityEvent("password_changed", "low", map[string]interface{}{"user_id": user.ID.Hex()})

	return s.issueTokens(ctx, user)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := utils.GenerateToken(resetTokenBytes)
	if err != nil {
		return err
	}
	expires := s.now().Add(s.config.ResetTokenTTL)

	err = s.userRepo.Update(ctx, user.ID, bson.M{
		"password_reset_token":   utils.HashToken(token),
		"password_reset_expires": expires,
	})
	if err != nil {
		return err
	}

	if err := s.notifications.Email(ctx, user.Email, models.TemplatePasswordReset, map[string]string{
		"name": user.FullName,
		"link": utils.CreatePasswordResetLink(s.config.FrontendURL, token, user.Email),
	}); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue password reset email")
	}

	s.logger.LogSecurityEvent("password_reset_requested", "low", map[string]interface{}{"user_id": user.ID.Hex()})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, request *ResetPasswordRequest) error {
	invalid := utils.NewBadRequestError("Invalid or expired reset token")

	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(request.Email))
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return invalid
		}
		return err
	}

	if user.PasswordResetToken == "" || user.PasswordResetToken != utils.HashToken(request.Token) {
		return invalid
	}
	if user.PasswordResetExp == nil || s.now().After(*user.PasswordResetExp) {
		return invalid
	}

	if err := utils.ValidatePasswordStrength(request.Password, s.config.PasswordMinLength); err != nil {
		return utils.NewValidationError([]utils.FieldError{{Field: "password", Message: err.Error()}})
	}

	hash, err := utils.HashPassword(request.Password, s.config.BcryptCost)
	if err != nil {
		return err
	}

	err = s.userRepo.Update(ctx, user.ID, bson.M{
		"password":               hash,
		"password_reset_token":   "",
		"password_reset_expires": nil,
		"refresh_tokens":         bson.A{},
	})
	if err != nil {
		return err
	}

	s.logger.LogSecurityEvent("password_reset", "medium", map[string]interface{}{"user_id": user.ID.Hex()})
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	userID, err := claims.ObjectID()
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid token").Wrap(err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthorizedError("User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("Account has been deactivated")
	}

	return user, nil
}

// issueTokens signs a fresh pair and stores the refresh token digest.
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*utils.TokenPair, error) {
	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if err := s.userRepo.AddRefreshToken(ctx, user.ID, utils.HashToken(tokens.RefreshToken)); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *authService) sendVerification(ctx context.Context, user *models.User, token string) {
	err := s.notifications.Email(ctx, user.Email, models.TemplateEmailVerification, map[string]string{
		"name": user.FullName,
		"link": utils.CreateVerificationLink(s.config.FrontendURL, token, user.Email),
	})
	if err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue verification email")
	}
}

func clientIP(client *ClientInfo) string {
	if client == nil || client.IPAddress == "" {
		return "Unknown"
	}
	return client.IPAddress
}
