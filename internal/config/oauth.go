package config

type OAuthConfig struct {
	Google   *OAuthClientConfig `yaml:"google"`
	Facebook *OAuthClientConfig `yaml:"facebook"`
}

type OAuthClientConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

func (c *OAuthClientConfig) Enabled() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

func loadOAuthConfig(frontendURL string) *OAuthConfig {
	return &OAuthConfig{
		Google: &OAuthClientConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", frontendURL+"/auth/callback/google"),
		},
		Facebook: &OAuthClientConfig{
			ClientID:     getEnv("FACEBOOK_APP_ID", ""),
			ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			RedirectURL:  getEnv("FACEBOOK_REDIRECT_URL", frontendURL+"/auth/callback/facebook"),
		},
	}
}
