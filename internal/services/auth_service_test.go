package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProvider struct {
	identities map[string]*oauth.Identity
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth.Identity, error) {
	identity, ok := p.identities[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return identity, nil
}

type authFixture struct {
	service  AuthService
	users    *fakeUserRepo
	notes    *fakeNotifications
	provider *fakeProvider
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		users:    newFakeUserRepo(),
		notes:    &fakeNotifications{},
		provider: &fakeProvider{identities: map[string]*oauth.Identity{}},
	}
	jwtManager := utils.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	f.service = NewAuthService(f.users, jwtManager, f.notes, AuthConfig{
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "https://gbtravel.example",
	}, logger.NewNop(), f.provider)
	return f
}

// tokenFromLink pulls the one-time token out of the last emailed link.
func (f *authFixture) tokenFromLink(t *testing.T, template string) string {
	t.Helper()
	sent := f.notes.byTemplate(template)
	require.NotEmpty(t, sent)
	link, err := url.Parse(sent[len(sent)-1].Data["link"])
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func (f *authFixture) registerVerified(t *testing.T, email, password string) *AuthResponse {
	t.Helper()
	ctx := context.Background()
	_, err := f.service.Register(ctx, &RegisterRequest{FullName: "Sara Malik", Email: email, Password: password})
	require.NoError(t, err)

	response, err := f.service.VerifyEmail(ctx, &VerifyEmailRequest{Email: email, Token: f.tokenFromLink(t, models.TemplateEmailVerification)})
	require.NoError(t, err)
	return response
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, &RegisterRequest{FullName: "Sara Malik", Email: "Sara@Example.com", Password: "trekking1"})
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", registered.Email)
	assert.True(t, registered.RequiresVerification)

	stored, err := f.users.GetByEmail(ctx, "sara@example.com")
	require.NoError(t, err)
	assert.False(t, stored.IsEmailVerified)
	assert.NotEqual(t, "trekking1", stored.Password)

	token := f.tokenFromLink(t, models.TemplateEmailVerification)
	assert.Equal(t, utils.HashToken(token), stored.EmailVerificationToken, "only the digest is stored")

	_, err = f.service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "sara@example.com", Token: "wrong"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))

	verified, err := f.service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "sara@example.com", Token: token})
	require.NoError(t, err)
	require.NotNil(t, verified.Tokens)
	assert.True(t, verified.User.IsEmailVerified)
	assert.Len(t, f.notes.byTemplate(models.TemplateWelcome), 1)

	again, err := f.service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "sara@example.com", Token: token})
	require.NoError(t, err)
	assert.True(t, again.AlreadyVerified)

	_, err = f.service.Register(ctx, &RegisterRequest{FullName: "Sara", Email: "sara@example.com", Password: "trekking1"})
	require.Error(t, err)
	assert.Equal(t, 409, appErrorStatus(t, err))
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.service.Register(ctx, &RegisterRequest{FullName: "Sara Malik", Email: "sara@example.com", Password: "trekking1"})
	require.NoError(t, err)

	f.service.(*authService).now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = f.service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "sara@example.com", Token: f.tokenFromLink(t, models.TemplateEmailVerification)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), &RegisterRequest{FullName: "Sara Malik", Email: "sara@example.com", Password: "nodigits"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "sara@example.com", "trekking1")
	ctx := context.Background()

	_, err := f.service.Login(ctx, &LoginRequest{Email: "sara@example.com", Password: "trekking2"}, nil)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))

	_, err = f.service.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "trekking1"}, nil)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))

	response, err := f.service.Login(ctx, &LoginRequest{Email: "SARA@example.com", Password: "trekking1"}, &ClientInfo{UserAgent: "Firefox", IPAddress: "203.0.113.9"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.Tokens.AccessToken)

	notices := f.notes.byTemplate(models.TemplateLoginNotification)
	require.Len(t, notices, 1)
	assert.Equal(t, "Firefox", notices[0].Data["userAgent"])
	assert.Equal(t, "203.0.113.9", notices[0].Data["ipAddress"])

	user, err := f.service.Authenticate(ctx, response.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", user.Email)

	_, err = f.service.Authenticate(ctx, response.Tokens.RefreshToken)
	assert.Error(t, err, "a refresh token is not an access token")
}

func TestRefreshToken_RotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	first := f.registerVerified(t, "sara@example.com", "trekking1").Tokens
	ctx := context.Background()

	second, err := f.service.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.service.RefreshToken(ctx, first.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))

	third, err := f.service.RefreshToken(ctx, second.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.RefreshToken(ctx, third.AccessToken)
	assert.Error(t, err)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	response := f.registerVerified(t, "sara@example.com", "trekking1")
	ctx := context.Background()

	require.NoError(t, f.service.Logout(ctx, response.User.ID, response.Tokens.RefreshToken))

	_, err := f.service.RefreshToken(ctx, response.Tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	session := f.registerVerified(t, "sara@example.com", "trekking1")
	ctx := context.Background()

	require.NoError(t, f.service.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, f.notes.byTemplate(models.TemplatePasswordReset))

	require.NoError(t, f.service.ForgotPassword(ctx, "sara@example.com"))
	token := f.tokenFromLink(t, models.TemplatePasswordReset)

	err := f.service.ResetPassword(ctx, &ResetPasswordRequest{Email: "sara@example.com", Token: "bogus", Password: "glacier22"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))

	require.NoError(t, f.service.ResetPassword(ctx, &ResetPasswordRequest{Email: "sara@example.com", Token: token, Password: "glacier22"}))

	_, err = f.service.Login(ctx, &LoginRequest{Email: "sara@example.com", Password: "trekking1"}, nil)
	assert.Error(t, err)
	_, err = f.service.Login(ctx, &LoginRequest{Email: "sara@example.com", Password: "glacier22"}, nil)
	assert.NoError(t, err)

	// Existing sessions are signed out and the link is single use.
	_, err = f.service.RefreshToken(ctx, session.Tokens.RefreshToken)
	assert.Error(t, err)
	err = f.service.ResetPassword(ctx, &ResetPasswordRequest{Email: "sara@example.com", Token: token, Password: "another33"})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	session := f.registerVerified(t, "sara@example.com", "trekking1")
	ctx := context.Background()

	_, err := f.service.ChangePassword(ctx, session.User.ID, &ChangePasswordRequest{CurrentPassword: "wrong1", NewPassword: "glacier22"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))

	tokens, err := f.service.ChangePassword(ctx, session.User.ID, &ChangePasswordRequest{CurrentPassword: "trekking1", NewPassword: "glacier22"})
	require.NoError(t, err)

	_, err = f.service.RefreshToken(ctx, session.Tokens.RefreshToken)
	assert.Error(t, err)
	_, err = f.service.RefreshToken(ctx, tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestSocialLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.provider.identities["new-user"] = &oauth.Identity{
		Provider: "google", ID: "g-1", Email: "Zara@Example.com", EmailVerified: true, Name: "Zara Ali", Picture: "https://img.example/zara.png",
	}
	f.provider.identities["unverified"] = &oauth.Identity{Provider: "google", ID: "g-2", Email: "x@example.com"}

	authURL, err := f.service.SocialAuthURL("Google", "state123")
	require.NoError(t, err)
	assert.Contains(t, authURL, "state=state123")

	_, err = f.service.SocialAuthURL("apple", "state123")
	require.Error(t, err)
	assert.Equal(t, 404, appErrorStatus(t, err))

	created, err := f.service.SocialLogin(ctx, "google", &SocialLoginRequest{Code: "new-user"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "zara@example.com", created.User.Email)
	assert.Equal(t, "Zara Ali", created.User.FullName)
	assert.True(t, created.User.IsEmailVerified)
	assert.Len(t, f.notes.byTemplate(models.TemplateWelcome), 1)

	linked, err := f.service.SocialLogin(ctx, "google", &SocialLoginRequest{Code: "new-user"}, nil)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, linked.User.ID)
	assert.Len(t, f.notes.byTemplate(models.TemplateWelcome), 1)

	_, err = f.service.SocialLogin(ctx, "google", &SocialLoginRequest{Code: "unverified"}, nil)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))

	_, err = f.service.SocialLogin(ctx, "google", &SocialLoginRequest{Code: "expired-code"}, nil)
	require.Error(t, err)
	assert.Equal(t, 401, appErrorStatus(t, err))
}

func TestSocialLogin_VerifiesExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.service.Register(ctx, &RegisterRequest{FullName: "Sara Malik", Email: "sara@example.com", Password: "trekking1"})
	require.NoError(t, err)

	f.provider.identities["sara"] = &oauth.Identity{Provider: "google", Email: "sara@example.com", EmailVerified: true, Picture: "https://img.example/sara.png"}
	response, err := f.service.SocialLogin(ctx, "google", &SocialLoginRequest{Code: "sara"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sara Malik", response.User.FullName)
	assert.True(t, response.User.IsEmailVerified)
	assert.Equal(t, "https://img.example/sara.png", response.User.ProfilePicture)

	stored, _ := f.users.GetByEmail(ctx, "sara@example.com")
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.EmailVerificationToken)
}
