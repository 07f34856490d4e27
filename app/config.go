package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

type Config struct {
	Port        int    `mapstructure:"PORT" validate:"min=1,max=65535"`
	Environment string `mapstructure:"ENVIRONMENT" validate:"required,oneof=development test production"`
	Version     string `mapstructure:"VERSION"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	StoreDriver  string `mapstructure:"STORE_DRIVER" validate:"required,oneof=memory mongo postgres"`
	DatabaseURL  string `mapstructure:"DATABASE_URL" validate:"required_unless=StoreDriver memory"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	Secret   string        `mapstructure:"SECRET" validate:"required"`
	TokenTTL time.Duration `mapstructure:"TOKEN_TTL" validate:"min=1s"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	MailHost      string `mapstructure:"MAIL_HOST" validate:"required_with=MQHost"`
	MailPort      int    `mapstructure:"MAIL_PORT"`
	MailUser      string `mapstructure:"MAIL_USER"`
	MailPassword  string `mapstructure:"MAIL_PASSWORD"`
	MailSender    string `mapstructure:"MAIL_SENDER" validate:"required_with=MQHost"`
	MailRecipient string `mapstructure:"MAIL_RECIPIENT" validate:"required_with=MQHost"`
}

var configDefaults = map[string]any{
	"PORT":              3003,
	"ENVIRONMENT":       "development",
	"VERSION":           "1.0.0",
	"TLS_CERT_FILE":     "",
	"TLS_KEY_FILE":      "",
	"STORE_DRIVER":      docstore.DriverMemory,
	"DATABASE_URL":      "",
	"DATABASE_NAME":     "bloglist",
	"SECRET":            "",
	"TOKEN_TTL":         "1h",
	"RABBITMQ_HOST":     "",
	"RABBITMQ_PORT":     "5672",
	"RABBITMQ_USER":     "guest",
	"RABBITMQ_PASSWORD": "guest",
	"MAIL_HOST":         "",
	"MAIL_PORT":         587,
	"MAIL_USER":         "",
	"MAIL_PASSWORD":     "",
	"MAIL_SENDER":       "",
	"MAIL_RECIPIENT":    "",
}

// loadConfig reads the optional env file at path, then the environment, which takes precedence.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	val := common.NewValidator()
	val.Struct(&config)
	if !val.Valid() {
		return nil, val.ValidationError()
	}

	return &config, nil
}
