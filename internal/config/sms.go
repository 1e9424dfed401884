package config

import "time"

const (
	SMSNone   = "none"
	SMSTwilio = "twilio"
	SMSAWS    = "aws"
)

type SMSConfig struct {
	Provider           string        `yaml:"provider"`
	Twilio             *TwilioConfig `yaml:"twilio"`
	AWS                *AWSSNSConfig `yaml:"aws"`
	SendTimeout        time.Duration `yaml:"send_timeout"`
	DefaultCountryCode string        `yaml:"default_country_code"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region string `yaml:"region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider: getEnv("SMS_PROVIDER", SMSNone),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region: getEnv("AWS_REGION", "ap-south-1"),
		},
		SendTimeout:        getEnvAsDuration("SMS_SEND_TIMEOUT", 3*time.Second),
		DefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "+91"),
	}
}
