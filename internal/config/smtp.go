package config

type SMTPConfig struct {
	Provider   string `yaml:"provider"` // smtp, ses
	SESRegion  string `yaml:"ses_region"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromEmail  string `yaml:"from_email"`
	FromName   string `yaml:"from_name"`
	SSL        bool   `yaml:"ssl"`
	TLS        bool   `yaml:"tls"`
	AuthMethod string `yaml:"auth_method"`
}

func loadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Provider:   getEnv("EMAIL_PROVIDER", "smtp"),
		SESRegion:  getEnv("AWS_SES_REGION", getEnv("AWS_REGION", "us-east-1")),
		Host:       getEnv("EMAIL_HOST", "smtp.gmail.com"),
		Port:       getEnvAsInt("EMAIL_PORT", 587),
		Username:   getEnv("EMAIL_USER", ""),
		Password:   getEnv("EMAIL_PASSWORD", ""),
		FromEmail:  getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "noreply@gbtravel.example")),
		FromName:   getEnv("EMAIL_FROM_NAME", "GB Travel Agency"),
		SSL:        getEnvAsBool("EMAIL_SSL", false),
		TLS:        getEnvAsBool("EMAIL_TLS", true),
		AuthMethod: getEnv("EMAIL_AUTH_METHOD", "plain"),
	}
}
