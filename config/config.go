// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBTypes   = []string{"sqlite", "postgres"}
)

// Config is built once at startup and handed to every component.
// Nothing outside this package reads viper directly.
type Config struct {
	LogLevel string

	Host struct {
		Port      int
		Domain    string
		PublicURL string
		SSL       bool
	}

	Database struct {
		Type string
		DSN  string
	}

	JWTSecret  string
	AdminEmail string

	Upload struct {
		// Hard cap in bytes. Files above WarnSize are accepted but logged.
		MaxSize  int64
		WarnSize int64
	}

	StorageType string

	CDN struct {
		CloudName    string
		APIKey       string
		UploadPreset string
		Endpoint     string
	}

	S3 struct {
		AccountID       string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
	}

	RecordStore struct {
		Endpoint           string
		APIKey             string
		BaseID             string
		QueueTable         string
		UsersTable         string
		NotificationsTable string
	}

	Mail struct {
		Host     string
		Port     int
		Sender   string
		Password string
	}
}

// Setup prepares everything config-related so that the app can
// start working. It returns the assembled Config or an error if
// something is critically wrong and the application can't run.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.public_url", "host_public_url")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("database.type", "database_type")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("admin.email", "admin_email")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.warn_size", "upload_warn_size")

	v.BindEnv("storage.type", "storage_type")

	v.BindEnv("cdn.cloud_name", "cdn_cloud_name")
	v.BindEnv("cdn.api_key", "cdn_api_key")
	v.BindEnv("cdn.upload_preset", "cdn_upload_preset")
	v.BindEnv("cdn.endpoint", "cdn_endpoint")

	v.BindEnv("s3.account_id", "s3_account_id")
	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")
	v.BindEnv("s3.bucket", "s3_bucket")

	v.BindEnv("recordstore.endpoint", "recordstore_endpoint")
	v.BindEnv("recordstore.api_key", "recordstore_api_key")
	v.BindEnv("recordstore.base_id", "recordstore_base_id")
	v.BindEnv("recordstore.queue_table", "recordstore_queue_table")
	v.BindEnv("recordstore.users_table", "recordstore_users_table")
	v.BindEnv("recordstore.notifications_table", "recordstore_notifications_table")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender", "mail_sender")
	v.BindEnv("mail.password", "mail_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("upload.max_size", 10)
	v.SetDefault("upload.warn_size", 5)

	v.SetDefault("storage.type", "cdn")
	v.SetDefault("cdn.endpoint", "https://api.cloudinary.com/v1_1")

	v.SetDefault("recordstore.endpoint", "https://api.airtable.com/v0")
	v.SetDefault("recordstore.queue_table", "Image Queue")
	v.SetDefault("recordstore.users_table", "Users")
	v.SetDefault("recordstore.notifications_table", "Notifications")

	v.SetDefault("mail.port", 587)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return nil, errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return nil, errors.New("invalid port provided")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return nil, errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("jwt.secret") == "" {
		return nil, errors.New("jwt.secret is missing")
	}

	if !slices.Contains(validDBTypes, v.GetString("database.type")) {
		return nil, errors.New("invalid database type provided")
	}

	if v.GetString("recordstore.api_key") == "" {
		return nil, errors.New("record store API key can't be empty")
	}

	if v.GetString("recordstore.base_id") == "" {
		return nil, errors.New("record store base ID can't be empty")
	}

	switch v.GetString("storage.type") {
	case "cdn":
		if v.GetString("cdn.cloud_name") == "" {
			return nil, errors.New("CDN cloud name can't be empty")
		}
		if v.GetString("cdn.upload_preset") == "" {
			return nil, errors.New("CDN upload preset can't be empty")
		}
	case "s3":
		if v.GetString("s3.account_id") == "" {
			return nil, errors.New("account id can't be empty")
		}
		if v.GetString("s3.access_key_id") == "" {
			return nil, errors.New("access key id can't be empty")
		}
		if v.GetString("s3.secret_access_key") == "" {
			return nil, errors.New("secret access key can't be empty")
		}
		if v.GetString("s3.bucket") == "" {
			return nil, errors.New("bucket can't be empty")
		}
	default:
		return nil, errors.New("invalid storage type provided")
	}

	if v.GetString("mail.host") == "" {
		return nil, errors.New("mail host can't be empty")
	}

	if v.GetString("mail.sender") == "" {
		return nil, errors.New("mail sender address can't be empty")
	}

	return load(), nil
}

func load() *Config {
	c := &Config{
		LogLevel:    v.GetString("app.log_level"),
		JWTSecret:   v.GetString("jwt.secret"),
		AdminEmail:  v.GetString("admin.email"),
		StorageType: v.GetString("storage.type"),
	}

	c.Host.Port = v.GetInt("host.port")
	c.Host.Domain = v.GetString("host.domain")
	c.Host.SSL = v.GetBool("host.ssl.enabled")
	c.Host.PublicURL = v.GetString("host.public_url")
	if c.Host.PublicURL == "" {
		scheme := "http"
		if c.Host.SSL {
			scheme = "https"
		}
		c.Host.PublicURL = fmt.Sprintf("%s://%s", scheme, c.Host.Domain)
	}

	c.Database.Type = v.GetString("database.type")
	c.Database.DSN = v.GetString("database.dsn")

	c.Upload.MaxSize = v.GetInt64("upload.max_size") << 20
	c.Upload.WarnSize = v.GetInt64("upload.warn_size") << 20

	c.CDN.CloudName = v.GetString("cdn.cloud_name")
	c.CDN.APIKey = v.GetString("cdn.api_key")
	c.CDN.UploadPreset = v.GetString("cdn.upload_preset")
	c.CDN.Endpoint = v.GetString("cdn.endpoint")

	c.S3.AccountID = v.GetString("s3.account_id")
	c.S3.AccessKeyID = v.GetString("s3.access_key_id")
	c.S3.SecretAccessKey = v.GetString("s3.secret_access_key")
	c.S3.Bucket = v.GetString("s3.bucket")

	c.RecordStore.Endpoint = v.GetString("recordstore.endpoint")
	c.RecordStore.APIKey = v.GetString("recordstore.api_key")
	c.RecordStore.BaseID = v.GetString("recordstore.base_id")
	c.RecordStore.QueueTable = v.GetString("recordstore.queue_table")
	c.RecordStore.UsersTable = v.GetString("recordstore.users_table")
	c.RecordStore.NotificationsTable = v.GetString("recordstore.notifications_table")

	c.Mail.Host = v.GetString("mail.host")
	c.Mail.Port = v.GetInt("mail.port")
	c.Mail.Sender = v.GetString("mail.sender")
	c.Mail.Password = v.GetString("mail.password")

	return c
}
