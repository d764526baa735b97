package publishers

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCatalogNormalizesEntries(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: " hook "
    type: HTTP
    http:
      url: " https://hooks.example.com/brief "
      headers:
        X-Token: " abc "
        Empty: ""
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.example.com/q
      region: us-east-1
      credentials:
        access_key_id: "  "
`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	hook, ok := catalog.ByID("hook")
	require.True(t, ok)
	assert.Equal(t, TypeHTTP, hook.Type)
	assert.Equal(t, "https://hooks.example.com/brief", hook.HTTP.URL)
	assert.Equal(t, "POST", hook.HTTP.Method)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, hook.HTTP.Headers)

	queue, ok := catalog.ByID("queue")
	require.True(t, ok)
	assert.Nil(t, queue.SQS.Credentials)
	assert.False(t, queue.IsEnabled())

	enabled := catalog.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "hook", enabled[0].ID)
}

func TestLoadCatalogReadsJSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"t","type":"sns","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:t","region":"us-east-1"}}]}`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	topic, ok := catalog.ByID("t")
	require.True(t, ok)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:t", topic.SNS.TopicARN)
}

func TestLoadCatalogEmptyFileDisablesNotifications(t *testing.T) {
	catalog, err := LoadCatalog(writeFile(t, "publishers.yaml", "publishers: []\n"))
	require.NoError(t, err)
	assert.Empty(t, catalog.Enabled())
}

func TestLoadCatalogMissingFileKeepsNotExist(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewCatalogRejectsInvalidEntries(t *testing.T) {
	cases := map[string]struct {
		entries []Config
		want    string
	}{
		"missing id":       {[]Config{{Type: TypeHTTP}}, "id is required"},
		"missing type":     {[]Config{{ID: "a"}}, "type is required"},
		"unknown type":     {[]Config{{ID: "a", Type: "fax"}}, `unknown type "fax"`},
		"missing block":    {[]Config{{ID: "a", Type: TypeSNS}}, "sns block is required"},
		"missing http url": {[]Config{{ID: "a", Type: TypeHTTP, HTTP: &HTTPConfig{}}}, "http.url required"},
		"missing sqs fields": {
			[]Config{{ID: "a", Type: TypeSQS, SQS: &SQSConfig{}}},
			"sqs.uri, sqs.region required",
		},
		"missing pubsub topic": {
			[]Config{{ID: "a", Type: TypeGCPPubSub, PubSub: &PubSubConfig{ProjectID: "p"}}},
			"gcp_pubsub.topic required",
		},
		"duplicate id": {
			[]Config{
				{ID: "a", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://x"}},
				{ID: "a", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://y"}},
			},
			`duplicate publisher id "a"`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(tc.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestStaticCredentialsAreTrimmed(t *testing.T) {
	catalog, err := NewCatalog([]Config{{
		ID:   "t",
		Type: TypeSNS,
		SNS: &SNSConfig{
			TopicARN:    "arn",
			Region:      "us-east-1",
			Credentials: &AWSCredentials{AccessKeyID: " AKIA ", SecretAccessKey: " secret "},
		},
	}})
	require.NoError(t, err)

	topic, _ := catalog.ByID("t")
	require.NotNil(t, topic.SNS.Credentials)
	assert.Equal(t, "AKIA", topic.SNS.Credentials.AccessKeyID)
	assert.Equal(t, "secret", topic.SNS.Credentials.SecretAccessKey)
}

func TestHTTPTimeoutDefaults(t *testing.T) {
	assert.Equal(t, "5s", (&HTTPConfig{}).Timeout().String())
	assert.Equal(t, "2s", (&HTTPConfig{TimeoutSeconds: 2}).Timeout().String())
}
