package sinks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Sinks []Config `json:"sinks" yaml:"sinks"`
}

// Config is one sink entry from the sinks file.
type Config struct {
	Name    string        `json:"name" yaml:"name"`
	Kind    string        `json:"kind" yaml:"kind"`
	Enabled *bool         `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPConfig   `json:"http" yaml:"http"`
	SQS     *SQSConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPConfig posts events as JSON to a webhook.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSCredentials are optional static keys; without them the default chain is used.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSConfig targets an SQS queue.
type SQSConfig struct {
	QueueURL    string          `json:"queue_url" yaml:"queue_url"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSConfig targets an SNS topic.
type SNSConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// PubSubConfig targets a Google Cloud Pub/Sub topic.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// EnabledValue reports the enabled flag, defaulting to true.
func (c Config) EnabledValue() bool {
	return c.Enabled == nil || *c.Enabled
}

// ConfigSet is the validated content of a sinks file.
type ConfigSet struct {
	sinks []Config
}

// LoadRegistry reads and validates a YAML or JSON sinks file.
func LoadRegistry(path string) (*ConfigSet, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}
	return ParseConfigs(raw, filepath.Ext(path))
}

// ParseConfigs decodes sinks file content; ext selects the format and may be empty.
func ParseConfigs(raw []byte, ext string) (*ConfigSet, error) {
	file, err := decodeConfigFile(raw, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sinks entries")
	}

	set := &ConfigSet{sinks: make([]Config, 0, len(file.Sinks))}
	names := make(map[string]struct{}, len(file.Sinks))
	for i := range file.Sinks {
		cfg := sanitize(file.Sinks[i])
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := names[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate sink name %q", cfg.Name)
		}
		names[cfg.Name] = struct{}{}
		set.sinks = append(set.sinks, cfg)
	}
	return set, nil
}

func decodeConfigFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		ext string
		fn  func([]byte, any) error
	}{
		{ext: ".yaml", fn: yaml.Unmarshal},
		{ext: ".yml", fn: yaml.Unmarshal},
		{ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = err
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, fmt.Errorf("decode sinks file: %w", lastErr)
	}
	return configFile{}, fmt.Errorf("sinks file extension %q not recognized (expected YAML or JSON)", ext)
}

func sanitize(cfg Config) Config {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Kind = strings.ToLower(strings.TrimSpace(cfg.Kind))

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
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}
	return cfg
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
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

func validate(cfg Config) error {
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	switch cfg.Kind {
	case "":
		return fmt.Errorf("kind is required for sink %q", cfg.Name)
	case KindHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.Name)
		}
	case KindSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.queue_url is required for sink %q", cfg.Name)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for sink %q", cfg.Name)
		}
	case KindSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for sink %q", cfg.Name)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for sink %q", cfg.Name)
		}
	case KindPubSub:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for sink %q", cfg.Name)
		}
	default:
		return fmt.Errorf("unknown kind %q for sink %q", cfg.Kind, cfg.Name)
	}
	return nil
}

// All returns every configured sink.
func (s *ConfigSet) All() []Config {
	if s == nil {
		return nil
	}
	out := make([]Config, len(s.sinks))
	copy(out, s.sinks)
	return out
}

// Enabled returns the sinks whose enabled flag is not false.
func (s *ConfigSet) Enabled() []Config {
	var out []Config
	for _, cfg := range s.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
