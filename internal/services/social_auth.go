package services

import (
	"context"
	"strings"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"
	"gbtravel/pkg/oauth"

	"go.mongodb.org/mongo-driver/bson"
)

type SocialLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

func (s *authService) provider(name string) (oauth.Provider, error) {
	p, ok := s.providers[strings.ToLower(name)]
	if !ok {
		return nil, utils.NewNotFoundError("Sign-in with %s is not available", name)
	}
	return p, nil
}

func (s *authService) SocialAuthURL(provider, state string) (string, error) {
	p, err := s.provider(provider)
	if err != nil {
		return "", err
	}
	return p.AuthURL(state), nil
}

// SocialLogin signs in with a provider authorization code. Accounts are matched
// by email; an unknown email creates a verified customer account.
func (s *authService) SocialLogin(ctx context.Context, provider string, request *SocialLoginRequest, client *ClientInfo) (*AuthResponse, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}

	identity, err := p.Exchange(ctx, request.Code)
	if err != nil {
		s.logger.WithError(err).WithField("provider", p.Name()).Warn("Social sign-in exchange failed")
		return nil, utils.NewUnauthorizedError("Sign-in with %s failed", p.Name())
	}
	if identity.Email == "" {
		return nil, utils.NewBadRequestError("Your %s account has no email address", p.Name())
	}
	if !identity.EmailVerified {
		return nil, utils.NewUnauthorizedError("Your %s email address is not verified", p.Name())
	}

	email := utils.NormalizeEmail(identity.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.linkSocialUser(ctx, user, identity); err != nil {
			return nil, err
		}
	case utils.IsKind(err, utils.KindNotFound):
		if user, err = s.createSocialUser(ctx, email, identity); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID, "social_login", map[string]interface{}{
		"provider":   p.Name(),
		"ip_address": clientIP(client),
	})

	return &AuthResponse{User: user.Public(), Tokens: tokens}, nil
}

func (s *authService) linkSocialUser(ctx context.Context, user *models.User, identity *oauth.Identity) error {
	if !user.IsActive {
		return utils.NewUnauthorizedError("Account has been deactivated")
	}

	now := s.now()
	updates := bson.M{"last_login": now}
	if !user.IsEmailVerified {
		// The provider has proven ownership of the address.
		updates["is_email_verified"] = true
		updates["email_verification_token"] = ""
		updates["email_verification_expires"] = nil
		user.IsEmailVerified = true
	}
	if user.ProfilePicture == "" && identity.Picture != "" {
		updates["profile_picture"] = identity.Picture
		user.ProfilePicture = identity.Picture
	}
	if err := s.userRepo.Update(ctx, user.ID, updates); err != nil {
		return err
	}
	user.LastLogin = &now
	return nil
}

func (s *authService) createSocialUser(ctx context.Context, email string, identity *oauth.Identity) (*models.User, error) {
	// The account gets an unusable random password; "forgot password" sets a real one.
	secret, err := utils.GenerateToken(resetTokenBytes)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(secret, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	now := s.now()
	user := &models.User{
		FullName:        name,
		Email:           email,
		Password:        hash,
		ProfilePicture:  identity.Picture,
		Role:            models.UserRoleCustomer,
		IsActive:        true,
		IsEmailVerified: true,
		LastLogin:       &now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.notifications.Email(ctx, user.Email, models.TemplateWelcome, map[string]string{
		"name":        user.FullName,
		"frontendUrl": s.config.FrontendURL,
	}); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue welcome email")
	}
	s.logger.LogUserAction(user.ID, "register", map[string]interface{}{
		"email":    utils.MaskEmail(email),
		"provider": identity.Provider,
	})
	return user, nil
}
