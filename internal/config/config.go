package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	JWTSecret           string `yaml:"jwt_secret"`
	AccessTTLMinutes    int    `yaml:"access_ttl_minutes"`
	BcryptCost          int    `yaml:"bcrypt_cost"`
	MaxLoginAttempts    int    `yaml:"max_login_attempts"`
	MaxRecoveryAttempts int    `yaml:"max_recovery_attempts"`
	OTPLength           int    `yaml:"otp_length"`
	OTPAttempts         int    `yaml:"otp_attempts"`
	OTPTTLMinutes       int    `yaml:"otp_ttl_minutes"`
	TokenBytes          int    `yaml:"token_bytes"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth     AuthConfig     `yaml:"auth"`
	Telegram TelegramConfig `yaml:"telegram"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	cfg.Auth.applyDefaults()
	return &cfg
}

// applyDefaults — значения по умолчанию: счётчики 10, OTP 6 цифр, окно 5 минут.
func (a *AuthConfig) applyDefaults() {
	if a.AccessTTLMinutes <= 0 {
		a.AccessTTLMinutes = 60
	}
	if a.BcryptCost <= 0 {
		a.BcryptCost = 12
	}
	if a.MaxLoginAttempts <= 0 {
		a.MaxLoginAttempts = 10
	}
	if a.MaxRecoveryAttempts <= 0 {
		a.MaxRecoveryAttempts = 10
	}
	if a.OTPLength <= 0 {
		a.OTPLength = 6
	}
	if a.OTPAttempts <= 0 {
		a.OTPAttempts = 10
	}
	if a.OTPTTLMinutes <= 0 {
		a.OTPTTLMinutes = 5
	}
	if a.TokenBytes <= 0 {
		a.TokenBytes = 10
	}
}

func (a *AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

func (a *AuthConfig) OTPTTL() time.Duration {
	return time.Duration(a.OTPTTLMinutes) * time.Minute
}
