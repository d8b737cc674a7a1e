package fideauth

import (
	"os"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// EnvConfig is the env-backed Config implementation. Values come from the
// process environment, optionally seeded from a dotenv file.
type EnvConfig struct {
	BaseURL       string
	DirectoryURL  string
	ServiceKey    string
	SenderName    string
	SenderAddress string
	SMTP          SMTPConfig
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the environment. Paths, when given,
// name dotenv files loaded first; a missing file is an error, matching the
// expectation that an explicitly named file exists.
func LoadConfig(paths ...string) (*EnvConfig, error) {
	if len(paths) > 0 {
		if err := godotenv.Load(paths...); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load dotenv file")
		}
	}

	smtpPort, _ := strconv.Atoi(getEnvOrDefault("FIDEAUTH_SMTP_PORT", "587"))

	cfg := &EnvConfig{
		BaseURL:       getEnvOrDefault("FIDEAUTH_BASE_URL", "http://localhost:3000"),
		DirectoryURL:  os.Getenv("FIDEAUTH_DIRECTORY_URL"),
		ServiceKey:    os.Getenv("FIDEAUTH_SERVICE_KEY"),
		SenderName:    getEnvOrDefault("FIDEAUTH_SENDER_NAME", "FastFide"),
		SenderAddress: getEnvOrDefault("FIDEAUTH_SENDER_ADDRESS", "noreply@fastfide.example"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("FIDEAUTH_SMTP_HOST"),
			Port:     smtpPort,
			User:     os.Getenv("FIDEAUTH_SMTP_USER"),
			Password: os.Getenv("FIDEAUTH_SMTP_PASSWORD"),
			From:     getEnvOrDefault("FIDEAUTH_SENDER_ADDRESS", "noreply@fastfide.example"),
			FromName: getEnvOrDefault("FIDEAUTH_SENDER_NAME", "FastFide"),
		},
	}

	return cfg, nil
}

func (c *EnvConfig) GetBaseURL() string       { return c.BaseURL }
func (c *EnvConfig) GetDirectoryURL() string  { return c.DirectoryURL }
func (c *EnvConfig) GetServiceKey() string    { return c.ServiceKey }
func (c *EnvConfig) GetSenderName() string    { return c.SenderName }
func (c *EnvConfig) GetSenderAddress() string { return c.SenderAddress }

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
