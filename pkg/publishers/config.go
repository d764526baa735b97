package publishers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/daily-brief/pkg/configfile"
)

// Sink types accepted in the publishers file.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

// Config is one entry of the publishers file. Exactly the block matching Type is read.
type Config struct {
	ID      string        `json:"id" yaml:"id"`
	Type    string        `json:"type" yaml:"type"`
	Enabled *bool         `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPConfig   `json:"http" yaml:"http"`
	SQS     *SQSConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// IsEnabled treats a missing flag as enabled.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// HTTPConfig points at a webhook receiving the event as JSON.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout is the per-delivery bound, five seconds unless configured.
func (c *HTTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AWSCredentials pins a static key pair; the default AWS chain is used when absent.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSConfig targets an SQS queue.
type SQSConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
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
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// Catalog is the validated publishers file.
type Catalog struct {
	entries []Config
}

// LoadCatalog reads and validates a publishers file. A file with no entries is valid and
// disables notifications.
func LoadCatalog(path string) (*Catalog, error) {
	var file struct {
		Publishers []Config `json:"publishers" yaml:"publishers"`
	}
	if err := configfile.Decode(path, &file); err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	return NewCatalog(file.Publishers)
}

// NewCatalog validates entries and rejects duplicate ids.
func NewCatalog(entries []Config) (*Catalog, error) {
	c := &Catalog{entries: make([]Config, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		e = e.normalized()
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate publisher id %q", e.ID)
		}
		seen[e.ID] = true
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// ByID returns the entry with the given id.
func (c *Catalog) ByID(id string) (Config, bool) {
	if c == nil {
		return Config{}, false
	}
	id = strings.TrimSpace(id)
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Config{}, false
}

// Enabled returns the entries to build, in file order.
func (c *Catalog) Enabled() []Config {
	if c == nil {
		return nil
	}
	var out []Config
	for _, e := range c.entries {
		if e.IsEnabled() {
			out = append(out, e)
		}
	}
	return out
}

func (c Config) normalized() Config {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.HTTP != nil {
		h := *c.HTTP
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = "POST"
		}
		headers := make(map[string]string, len(h.Headers))
		for k, v := range h.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		h.Headers = headers
		c.HTTP = &h
	}
	if c.SQS != nil {
		q := *c.SQS
		q.QueueURL, q.Region = strings.TrimSpace(q.QueueURL), strings.TrimSpace(q.Region)
		q.Credentials = q.Credentials.normalized()
		c.SQS = &q
	}
	if c.SNS != nil {
		n := *c.SNS
		n.TopicARN, n.Region = strings.TrimSpace(n.TopicARN), strings.TrimSpace(n.Region)
		n.Credentials = n.Credentials.normalized()
		c.SNS = &n
	}
	if c.PubSub != nil {
		p := *c.PubSub
		p.ProjectID, p.Topic = strings.TrimSpace(p.ProjectID), strings.TrimSpace(p.Topic)
		p.CredentialsFile, p.Endpoint = strings.TrimSpace(p.CredentialsFile), strings.TrimSpace(p.Endpoint)
		c.PubSub = &p
	}
	return c
}

func (a *AWSCredentials) normalized() *AWSCredentials {
	if a == nil {
		return nil
	}
	out := AWSCredentials{
		AccessKeyID:     strings.TrimSpace(a.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(a.SecretAccessKey),
		SessionToken:    strings.TrimSpace(a.SessionToken),
	}
	if out.AccessKeyID == "" && out.SecretAccessKey == "" {
		return nil
	}
	return &out
}

// missing lists the names of empty required values.
func missing(pairs ...string) error {
	var names []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			names = append(names, pairs[i])
		}
	}
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%s required", strings.Join(names, ", "))
}

func (c Config) validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	var err error
	switch c.Type {
	case "":
		return fmt.Errorf("publisher %q: type is required", c.ID)
	case TypeHTTP:
		if c.HTTP == nil {
			return fmt.Errorf("publisher %q: http block is required", c.ID)
		}
		err = missing("http.url", c.HTTP.URL)
	case TypeSQS:
		if c.SQS == nil {
			return fmt.Errorf("publisher %q: sqs block is required", c.ID)
		}
		err = missing("sqs.uri", c.SQS.QueueURL, "sqs.region", c.SQS.Region)
	case TypeSNS:
		if c.SNS == nil {
			return fmt.Errorf("publisher %q: sns block is required", c.ID)
		}
		err = missing("sns.topic_arn", c.SNS.TopicARN, "sns.region", c.SNS.Region)
	case TypeGCPPubSub:
		if c.PubSub == nil {
			return fmt.Errorf("publisher %q: gcp_pubsub block is required", c.ID)
		}
		err = missing("gcp_pubsub.project_id", c.PubSub.ProjectID, "gcp_pubsub.topic", c.PubSub.Topic)
	default:
		return fmt.Errorf("publisher %q: unknown type %q", c.ID, c.Type)
	}
	if err != nil {
		return fmt.Errorf("publisher %q: %w", c.ID, err)
	}
	return nil
}
