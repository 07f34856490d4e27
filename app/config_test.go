package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloglist/internal/common"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
PORT=8080
ENVIRONMENT=production
VERSION=2.0.0
STORE_DRIVER=mongo
DATABASE_URL=mongodb://localhost:27017
DATABASE_NAME=testdb
SECRET=sekret
TOKEN_TTL=30m
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
MAIL_HOST=smtp.example.com
MAIL_PORT=2525
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
MAIL_RECIPIENT=admin@example.com
`)

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "2.0.0", config.Version)
	assert.Equal(t, "mongo", config.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", config.DatabaseURL)
	assert.Equal(t, "testdb", config.DatabaseName)
	assert.Equal(t, "sekret", config.Secret)
	assert.Equal(t, 30*time.Minute, config.TokenTTL)
	assert.Equal(t, "rabbitmq.example.com", config.MQHost)
	assert.Equal(t, "5672", config.MQPort)
	assert.Equal(t, "testuser", config.MQUser)
	assert.Equal(t, "testpassword", config.MQPassword)
	assert.Equal(t, "smtp.example.com", config.MailHost)
	assert.Equal(t, 2525, config.MailPort)
	assert.Equal(t, "testuser@example.com", config.MailUser)
	assert.Equal(t, "sender@example.com", config.MailSender)
	assert.Equal(t, "admin@example.com", config.MailRecipient)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET", "from-env")

	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3003, config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "memory", config.StoreDriver)
	assert.Equal(t, "from-env", config.Secret)
	assert.Equal(t, time.Hour, config.TokenTTL)
}

func TestLoadConfigEnvironmentWins(t *testing.T) {
	path := writeConfig(t, "SECRET=from-file\nPORT=8080\n")
	t.Setenv("PORT", "9090")

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "from-file", config.Secret)
}

func TestLoadConfigValidation(t *testing.T) {
	testCases := []struct {
		name   string
		data   string
		fields []string
	}{
		{
			name:   "missing secret",
			data:   "PORT=8080\n",
			fields: []string{"Secret"},
		},
		{
			name:   "unknown driver",
			data:   "SECRET=s\nSTORE_DRIVER=sqlite\n",
			fields: []string{"StoreDriver"},
		},
		{
			name:   "database url required",
			data:   "SECRET=s\nSTORE_DRIVER=postgres\n",
			fields: []string{"DatabaseURL"},
		},
		{
			name:   "mail settings required with broker",
			data:   "SECRET=s\nRABBITMQ_HOST=localhost\n",
			fields: []string{"MailHost", "MailSender", "MailRecipient"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tc.data))

			var verr common.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tc.fields {
				assert.Contains(t, verr.Errors, f)
			}
		})
	}
}
