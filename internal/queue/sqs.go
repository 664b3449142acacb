package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQS limits a single receive to 10 messages and a 20 second long poll.
const (
	sqsMaxMessages = 10
	sqsMaxWait     = 20 * time.Second
)

// sqsAPI is the subset of *sqs.Client used here; tests substitute a fake.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQSTransport is a Transport backed by an Amazon SQS queue.
type SQSTransport struct {
	client            sqsAPI
	queueURL          string
	visibilityTimeout time.Duration
}

// NewSQSTransport wraps client for queueURL. A zero visibilityTimeout keeps
// the queue's own default.
func NewSQSTransport(client sqsAPI, queueURL string, visibilityTimeout time.Duration) *SQSTransport {
	return &SQSTransport{client: client, queueURL: queueURL, visibilityTimeout: visibilityTimeout}
}

func (t *SQSTransport) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	if max <= 0 {
		max = 1
	}
	if max > sqsMaxMessages {
		max = sqsMaxMessages
	}
	if wait > sqsMaxWait {
		wait = sqsMaxWait
	}

	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(t.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     int32(wait / time.Second),
	}
	if t.visibilityTimeout > 0 {
		in.VisibilityTimeout = int32(t.visibilityTimeout / time.Second)
	}

	out, err := t.client.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("receive messages: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (t *SQSTransport) Delete(ctx context.Context, receiptHandle string) error {
	_, err := t.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(t.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (t *SQSTransport) Send(ctx context.Context, body string) (string, error) {
	out, err := t.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// Depth reads the approximate counters SQS maintains for the queue.
func (t *SQSTransport) Depth(ctx context.Context) (Depth, error) {
	out, err := t.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(t.queueURL),
		AttributeNames: []types.QueueAttributeName{
			types.QueueAttributeNameApproximateNumberOfMessages,
			types.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
		},
	})
	if err != nil {
		return Depth{}, fmt.Errorf("get queue attributes: %w", err)
	}

	var d Depth
	d.Visible, _ = strconv.Atoi(out.Attributes[string(types.QueueAttributeNameApproximateNumberOfMessages)])
	d.InFlight, _ = strconv.Atoi(out.Attributes[string(types.QueueAttributeNameApproximateNumberOfMessagesNotVisible)])
	return d, nil
}

// compile-time checks
var (
	_ Transport     = (*SQSTransport)(nil)
	_ DepthReporter = (*SQSTransport)(nil)
)
