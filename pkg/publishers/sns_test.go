package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/daily-brief/internal/logger"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSPublisherSendsEvent(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "topic", topicARN: "arn:aws:sns:::topic", client: client, log: logger.NopLogger{}}

	evt := PageEvent{RunID: "run-1", PageID: "archive", FailedSources: []string{"bbc"}}
	require.NoError(t, pub.Publish(context.Background(), evt))
	require.NotNil(t, client.input)

	assert.Equal(t, "arn:aws:sns:::topic", aws.ToString(client.input.TopicArn))
	assert.Equal(t, "archive", aws.ToString(client.input.MessageAttributes["page_id"].StringValue))
	assert.Contains(t, aws.ToString(client.input.Message), `"failed_sources":["bbc"]`)
}

func TestSNSPublisherWrapsPublishError(t *testing.T) {
	boom := errors.New("boom")
	pub := &snsPublisher{id: "topic", topicARN: "arn", client: &fakeSNSClient{err: boom}, log: logger.NopLogger{}}

	require.ErrorIs(t, pub.Publish(context.Background(), PageEvent{PageID: "index"}), boom)
}
