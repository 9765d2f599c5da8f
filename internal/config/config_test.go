package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:      "8460",
		Env:       "development",
		JWTSecret: "a-development-secret-that-is-long-enough",
	}
}

func TestValidate_Development(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeDedupWindow(t *testing.T) {
	cfg := validConfig()
	cfg.ViewDedupWindow = -time.Minute
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "your-secret-key-change-in-production"
	cfg.DBPassword = "something-strong"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "short"
	cfg.DBPassword = "something-strong"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsWeakDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "a-production-secret-that-is-long-enough!"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionAcceptsHardenedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "a-production-secret-that-is-long-enough!"
	cfg.DBPassword = "something-strong"
	cfg.DBSSLMode = "require"
	assert.NoError(t, cfg.Validate())
}
