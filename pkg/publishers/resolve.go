package publishers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// DefaultTargetID names targets built straight from the command line.
const DefaultTargetID = "cli"

// ErrUnknownTarget is returned when a target string cannot be mapped onto the selected sink.
var ErrUnknownTarget = errors.New("target not understood by sink")

// Defaults carries process-wide settings applied to targets resolved from a raw string.
type Defaults struct {
	SinkType             string
	ApplicationID        string
	EventHubName         string
	EventHubPartitionKey string
	AWS                  AWSConfig
	GCPCredentialsFile   string
	GCPEndpoint          string
	HTTPMethod           string
	HTTPTimeoutSeconds   int
}

// Resolve turns the connection string given on the command line into a target.
// A matching entry in targets wins, then Defaults.SinkType, then DetectType.
func Resolve(raw string, targets *TargetRegistry, d Defaults) (PublisherConfig, error) {
	if cfg, ok := targets.ByID(raw); ok {
		if !cfg.EnabledValue() {
			return PublisherConfig{}, fmt.Errorf("target %q is disabled", cfg.ID)
		}
		return cfg, nil
	}

	typ := strings.ToLower(strings.TrimSpace(d.SinkType))
	if typ == "" {
		typ = DetectType(raw)
	}

	cfg := PublisherConfig{ID: DefaultTargetID, Type: typ}
	switch typ {
	case TypeEventHub:
		// The connection string stays opaque; the client library validates it.
		cfg.EventHub = &EventHubConfig{
			ConnectionString: raw,
			EventHub:         d.EventHubName,
			PartitionKey:     d.EventHubPartitionKey,
			ApplicationID:    d.ApplicationID,
		}
	case TypeSQS:
		aws := d.AWS
		if region := regionFromSQSURL(raw); region != "" {
			aws.Region = region
		}
		cfg.SQS = &SQSPublisherConfig{AWSConfig: aws, QueueURL: raw}
	case TypeSNS:
		topic, err := arn.Parse(strings.TrimSpace(raw))
		if err != nil {
			return PublisherConfig{}, fmt.Errorf("%w: %s topic arn: %w", ErrUnknownTarget, typ, err)
		}
		aws := d.AWS
		if topic.Region != "" {
			aws.Region = topic.Region
		}
		cfg.SNS = &SNSPublisherConfig{AWSConfig: aws, TopicARN: raw}
	case TypeGCPPubSub:
		project, topic, ok := parsePubSubTopic(raw)
		if !ok {
			return PublisherConfig{}, fmt.Errorf("%w: %s expects pubsub://<project>/<topic> or projects/<project>/topics/<topic>", ErrUnknownTarget, typ)
		}
		cfg.PubSub = &GCPQueueConfig{
			ProjectID:       project,
			Topic:           topic,
			CredentialsFile: d.GCPCredentialsFile,
			Endpoint:        d.GCPEndpoint,
		}
	case TypeHTTP:
		cfg.HTTP = &HTTPPublisherConfig{
			URL:            raw,
			Method:         d.HTTPMethod,
			TimeoutSeconds: d.HTTPTimeoutSeconds,
		}
	default:
		// Unknown sink types are left without settings; the registry reports them as unavailable.
		return cfg, nil
	}

	cfg = sanitizePublisherConfig(cfg)
	if err := validatePublisherConfig(cfg); err != nil {
		return PublisherConfig{}, err
	}
	if cfg.EventHub != nil {
		// Sanitizing trims; the client gets the argument byte for byte.
		cfg.EventHub.ConnectionString = raw
	}
	return cfg, nil
}

// DetectType guesses the sink type addressed by raw. Anything unrecognised,
// including Event Hubs connection strings, maps to TypeEventHub.
func DetectType(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "arn:aws:sns:"):
		return TypeSNS
	case strings.HasPrefix(lower, "pubsub://"):
		return TypeGCPPubSub
	case strings.HasPrefix(lower, "projects/") && strings.Contains(lower, "/topics/"):
		return TypeGCPPubSub
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		if isSQSHost(s) {
			return TypeSQS
		}
		return TypeHTTP
	default:
		return TypeEventHub
	}
}

func isSQSHost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasPrefix(host, "sqs.") && strings.HasSuffix(host, ".amazonaws.com")
}

// regionFromSQSURL extracts us-east-2 from https://sqs.us-east-2.amazonaws.com/123/queue.
func regionFromSQSURL(raw string) string {
	if !isSQSHost(raw) {
		return ""
	}
	u, _ := url.Parse(raw)
	parts := strings.Split(strings.ToLower(u.Hostname()), ".")
	if len(parts) < 4 {
		return ""
	}
	return parts[1]
}

func parsePubSubTopic(raw string) (project, topic string, ok bool) {
	s := strings.TrimSpace(raw)
	if rest, found := strings.CutPrefix(s, "pubsub://"); found {
		project, topic, ok = strings.Cut(rest, "/")
		return project, topic, ok && project != "" && topic != "" && !strings.Contains(topic, "/")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 4 || parts[0] != "projects" || parts[2] != "topics" {
		return "", "", false
	}
	return parts[1], parts[3], parts[1] != "" && parts[3] != ""
}
