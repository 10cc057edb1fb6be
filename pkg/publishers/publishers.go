package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeEventHub  = "eventhub"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcppubsub"
	TypeHTTP      = "http"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 10
)

// configFile represents the structure of the targets configuration file.
type configFile struct {
	Targets []PublisherConfig `json:"targets" yaml:"targets"`
}

// PublisherConfig describes one publish target: a sink type plus its settings.
type PublisherConfig struct {
	ID       string               `json:"id" yaml:"id"`
	Type     string               `json:"type" yaml:"type"`
	Enabled  *bool                `json:"enabled" yaml:"enabled"`
	EventHub *EventHubConfig      `json:"eventhub" yaml:"eventhub"`
	SQS      *SQSPublisherConfig  `json:"sqs" yaml:"sqs"`
	SNS      *SNSPublisherConfig  `json:"sns" yaml:"sns"`
	PubSub   *GCPQueueConfig      `json:"gcppubsub" yaml:"gcppubsub"`
	HTTP     *HTTPPublisherConfig `json:"http" yaml:"http"`
}

// EventHubConfig holds Azure Event Hubs settings.
type EventHubConfig struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	// EventHub is only needed when the connection string has no EntityPath.
	EventHub      string `json:"event_hub" yaml:"event_hub"`
	PartitionKey  string `json:"partition_key" yaml:"partition_key"`
	ApplicationID string `json:"application_id" yaml:"application_id"`
}

// AWSConfig holds the region and optional static credentials for AWS sinks.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	AWSConfig `json:",inline" yaml:",inline"`
	QueueURL  string `json:"uri" yaml:"uri"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	AWSConfig `json:",inline" yaml:",inline"`
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
}

// GCPQueueConfig holds Google Cloud Pub/Sub settings.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// TargetRegistry holds named publish targets loaded from a config file.
type TargetRegistry struct {
	mu      sync.RWMutex
	targets []PublisherConfig
	idx     map[string]PublisherConfig
}

// LoadTargets loads the target registry from a YAML/JSON file.
func LoadTargets(path string) (*TargetRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("targets file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	fileReg, err := parseTargets(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Targets) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}

	reg := &TargetRegistry{
		targets: make([]PublisherConfig, len(fileReg.Targets)),
		idx:     make(map[string]PublisherConfig, len(fileReg.Targets)),
	}

	for i := range fileReg.Targets {
		cfg := sanitizePublisherConfig(fileReg.Targets[i])
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", cfg.ID)
		}
		reg.targets[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseTargets attempts to decode the targets file content.
func parseTargets(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalTargets(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("targets file format not recognized (expected YAML or JSON)")
}

func unmarshalTargets(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s targets: %w", name, err)
	}
	return reg, nil
}

// sanitizePublisherConfig trims and normalizes the publisher config fields.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.EventHub != nil {
		c := *cfg.EventHub
		c.ConnectionString = strings.TrimSpace(c.ConnectionString)
		c.EventHub = strings.TrimSpace(c.EventHub)
		c.PartitionKey = strings.TrimSpace(c.PartitionKey)
		cfg.EventHub = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSConfig = sanitizeAWSConfig(c.AWSConfig)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSConfig = sanitizeAWSConfig(c.AWSConfig)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		cfg.PubSub = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

func sanitizeAWSConfig(c AWSConfig) AWSConfig {
	c.Region = strings.TrimSpace(c.Region)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.SessionToken = strings.TrimSpace(c.SessionToken)
	return c
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validatePublisherConfig checks that required fields are present.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for target %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeEventHub:
		if cfg.EventHub == nil {
			return fmt.Errorf("eventhub config required for target %q", cfg.ID)
		}
		if cfg.EventHub.ConnectionString == "" {
			return fmt.Errorf("eventhub.connection_string is required for target %q", cfg.ID)
		}
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for target %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for target %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for target %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for target %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for target %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for target %q", cfg.ID)
		}
	case TypeGCPPubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("gcppubsub config required for target %q", cfg.ID)
		}
		if cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("gcppubsub.project_id and gcppubsub.topic are required for target %q", cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for target %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for target %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the target config by id.
func (r *TargetRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return PublisherConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured targets.
func (r *TargetRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PublisherConfig, len(r.targets))
	copy(out, r.targets)
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Summary describes the target for logs without credentials or connection strings.
func (cfg PublisherConfig) Summary() map[string]string {
	out := map[string]string{"id": cfg.ID, "type": cfg.Type}
	switch {
	case cfg.EventHub != nil:
		if cfg.EventHub.EventHub != "" {
			out["event_hub"] = cfg.EventHub.EventHub
		}
	case cfg.SQS != nil:
		out["queue_url"] = cfg.SQS.QueueURL
		out["region"] = cfg.SQS.Region
	case cfg.SNS != nil:
		out["topic_arn"] = cfg.SNS.TopicARN
		out["region"] = cfg.SNS.Region
	case cfg.PubSub != nil:
		out["project_id"] = cfg.PubSub.ProjectID
		out["topic"] = cfg.PubSub.Topic
	case cfg.HTTP != nil:
		if u, err := url.Parse(cfg.HTTP.URL); err == nil {
			out["host"] = u.Host
		}
		out["method"] = cfg.HTTP.Method
	}
	return out
}
