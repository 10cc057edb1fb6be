package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName     string `mapstructure:"app_name"`
	Env         string `mapstructure:"app_env"`
	LogLevel    string `mapstructure:"log_level"`
	SinkType    string `mapstructure:"sink_type"`
	TargetsFile string `mapstructure:"targets_file"`

	EventHubName         string `mapstructure:"event_hub_name"`
	EventHubPartitionKey string `mapstructure:"event_hub_partition_key"`

	AWSRegion          string `mapstructure:"aws_region"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	AWSSessionToken    string `mapstructure:"aws_session_token"`

	GCPCredentialsFile string `mapstructure:"gcp_credentials_file"`
	GCPPubSubEndpoint  string `mapstructure:"gcp_pubsub_endpoint"`

	HTTPMethod         string `mapstructure:"http_method"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`

	SendTimeoutSeconds int64         `mapstructure:"send_timeout_seconds"`
	SendTimeout        time.Duration `mapstructure:"-"`

	JournalType             string        `mapstructure:"journal_type"`
	JournalPath             string        `mapstructure:"journal_path"`
	JournalRetentionSeconds int64         `mapstructure:"journal_retention_seconds"`
	JournalCleanupSeconds   int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalRetention        time.Duration `mapstructure:"-"`
	JournalCleanupInterval  time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-event-sender")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sink_type", "")
	v.SetDefault("targets_file", "")
	v.SetDefault("event_hub_name", "")
	v.SetDefault("event_hub_partition_key", "")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("aws_session_token", "")
	v.SetDefault("gcp_credentials_file", "")
	v.SetDefault("gcp_pubsub_endpoint", "")
	v.SetDefault("http_method", "POST")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("send_timeout_seconds", 0) // 0 leaves timeouts to the client libraries
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/sends.db")
	v.SetDefault("journal_retention_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SinkType = strings.ToLower(strings.TrimSpace(cfg.SinkType))
	cfg.HTTPMethod = strings.ToUpper(strings.TrimSpace(cfg.HTTPMethod))

	if cfg.SendTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid send_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.SendTimeout = time.Duration(cfg.SendTimeoutSeconds) * time.Second

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}

	if cfg.JournalRetentionSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_retention_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalRetention = time.Duration(cfg.JournalRetentionSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}
