package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/daily-brief/internal/logger"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendsEventWithRoutingAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://example.com/queue", client: client, log: logger.NopLogger{}}

	require.NoError(t, pub.Publish(context.Background(), PageEvent{RunID: "run-1", PageID: "index"}))
	require.NotNil(t, client.input)

	assert.Equal(t, "https://example.com/queue", aws.ToString(client.input.QueueUrl))
	attr := client.input.MessageAttributes["page_id"]
	assert.Equal(t, "index", aws.ToString(attr.StringValue))
	assert.Equal(t, "String", aws.ToString(attr.DataType))
	assert.Equal(t, "run-1", aws.ToString(client.input.MessageAttributes["run_id"].StringValue))
	assert.Contains(t, aws.ToString(client.input.MessageBody), `"page_id":"index"`)
}

func TestSQSPublisherWrapsSendError(t *testing.T) {
	boom := errors.New("boom")
	pub := &sqsPublisher{id: "queue", queueURL: "q", client: &fakeSQSClient{err: boom}, log: logger.NopLogger{}}

	err := pub.Publish(context.Background(), PageEvent{PageID: "index"})
	require.ErrorIs(t, err, boom)
}
