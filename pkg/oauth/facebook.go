package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,email,name,picture"

type FacebookProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewFacebookProvider(appID, appSecret, redirectURL string) *FacebookProvider {
	return &FacebookProvider{
		config: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		userInfoURL: facebookUserInfoURL,
	}
}

func (f *FacebookProvider) Name() string {
	return "facebook"
}

func (f *FacebookProvider) AuthURL(state string) string {
	return f.config.AuthCodeURL(state)
}

func (f *FacebookProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchProfile(ctx, f.config.Client(ctx, token), f.userInfoURL, &profile); err != nil {
		return nil, err
	}

	// Facebook only returns an email address once the user has confirmed it.
	return &Identity{
		Provider:      f.Name(),
		ID:            profile.ID,
		Email:         profile.Email,
		EmailVerified: profile.Email != "",
		Name:          profile.Name,
		Picture:       profile.Picture.Data.URL,
	}, nil
}

var _ Provider = (*FacebookProvider)(nil)
