package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains library configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	Remote   Remote  `envPrefix:"REMOTE_"`
	SMS      SMS     `envPrefix:"SMS_"`
	Session  Session `envPrefix:"SESSION_"`
	Storage  Storage `envPrefix:"MINIO_"`
	Local    Local   `envPrefix:"LOCAL_"`
}

// Remote contains connection parameters for the hosted backend.
type Remote struct {
	DSN     string        `env:"DSN" envDefault:""`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	UseMock bool          `env:"USE_MOCK" envDefault:"false"`
}

// placeholderMarkers are substrings of DSN values copied verbatim from
// setup templates. A DSN containing one is treated as not configured.
var placeholderMarkers = []string{"your-project", "your_project", "example.com", "changeme"}

// Configured reports whether the remote backend has usable connection
// parameters: a non-empty DSN that is not an obvious template placeholder.
func (r Remote) Configured() bool {
	if strings.TrimSpace(r.DSN) == "" {
		return false
	}
	lower := strings.ToLower(r.DSN)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// SMS contains delivery provider selection and credentials.
type SMS struct {
	Provider string        `env:"PROVIDER" envDefault:"console"`
	APIKey   string        `env:"API_KEY" envDefault:""`
	SenderID string        `env:"SENDER_ID" envDefault:"AGRIMT"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// Twilio needs an account SID alongside the auth token in APIKey.
	AccountSID string `env:"ACCOUNT_SID" envDefault:""`
	From       string `env:"FROM" envDefault:""`
}

// Session contains session token parameters.
type Session struct {
	Secret string `env:"SECRET" envDefault:"devsecret"`
}

// Storage contains object storage parameters for avatars.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:""`
	AccessKey string `env:"ACCESS_KEY" envDefault:""`
	SecretKey string `env:"SECRET_KEY" envDefault:""`
	Bucket    string `env:"BUCKET_NAME" envDefault:"agrimitra-avatars"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Configured reports whether object storage credentials are present.
func (s Storage) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// Local contains parameters of the on-device fallback store.
type Local struct {
	Dir string `env:"DIR" envDefault:".agrimitra"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
