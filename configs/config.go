package config

import (
	"os"
	"strings"
)

type SMSConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

type KafkaConfig struct {
	Brokers []string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func LoadSMSConfig() SMSConfig {
	return SMSConfig{
		Username: os.Getenv("SMS_USERNAME"),
		APIKey:   os.Getenv("SMS_API_KEY"),
		SMSURL:   getEnvOrDefault("SMS_GATEWAY_URL", "https://api.sandbox.africastalking.com/version1/messaging"),
		SenderID: getEnvOrDefault("SMS_SENDER_ID", "CHROMA"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

// LoadKafkaConfig returns an empty broker list when event mirroring is not
// configured; callers skip starting the mirror in that case.
func LoadKafkaConfig() KafkaConfig {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return KafkaConfig{}
	}

	brokers := strings.Split(raw, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	return KafkaConfig{Brokers: brokers}
}

// LoadOIDCConfig returns the SSO provider settings. An empty Issuer means
// SSO sign-in is disabled and only password auth is offered.
func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
