package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("extraction-service")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 10*time.Minute, cfg.Server.WriteTimeout)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)

	assert.Equal(t, "2024-11-30", cfg.Layout.APIVersion)
	assert.Equal(t, "prebuilt-layout", cfg.Layout.ModelID)
	assert.Equal(t, 2*time.Second, cfg.Layout.PollInterval)
	assert.False(t, cfg.Layout.Configured())

	assert.Equal(t, "https://api.openai.com/v1", cfg.Generative.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Generative.Model)
	assert.False(t, cfg.Generative.Configured())

	assert.Equal(t, "system", cfg.Extraction.DefaultUploadedBy)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("QUESTBANK_SERVER_PORT", "9090")
	t.Setenv("QUESTBANK_LAYOUT_ENDPOINT", "https://layout.example.com")
	t.Setenv("QUESTBANK_LAYOUT_API_KEY", "secret")
	t.Setenv("QUESTBANK_GENERATIVE_API_KEY", "sk-test")
	t.Setenv("QUESTBANK_EXTRACTION_DEFAULT_UPLOADED_BY", "bulk-importer")

	cfg, err := Load("extraction-service")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Layout.Configured())
	assert.True(t, cfg.Generative.Configured())
	assert.Equal(t, "bulk-importer", cfg.Extraction.DefaultUploadedBy)
}

func TestLayoutConfiguredRequiresBothFields(t *testing.T) {
	assert.False(t, (&LayoutConfig{Endpoint: "https://x"}).Configured())
	assert.False(t, (&LayoutConfig{APIKey: "k"}).Configured())
	assert.True(t, (&LayoutConfig{Endpoint: "https://x", APIKey: "k"}).Configured())
}

func TestDatabaseDSNFromFields(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Database: "questbank",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=app password=pw dbname=questbank sslmode=require",
		cfg.DSN())
}

func TestDatabaseDSNFromURL(t *testing.T) {
	cfg := DatabaseConfig{
		URL: "postgres://app:pw@db.internal:5433/questbank?sslmode=require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=app password=pw dbname=questbank sslmode=require",
		cfg.DSN())
}

func TestDatabaseValidateProduction(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost"}
	assert.Error(t, cfg.Validate(EnvProduction))

	cfg = DatabaseConfig{URL: "postgres://app:pw@db.internal/questbank"}
	assert.NoError(t, cfg.Validate(EnvProduction))

	cfg = DatabaseConfig{Host: "localhost"}
	assert.NoError(t, cfg.Validate(EnvDevelopment))
}

func TestLoadWithValidationAllowsMissingUpstreamCredentials(t *testing.T) {
	// Degraded start is deliberate: requests get 503 until configured.
	cfg, err := LoadWithValidation("extraction-service")
	require.NoError(t, err)
	assert.False(t, cfg.Layout.Configured())
}
