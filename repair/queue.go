package repair

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

// Message is one dequeued repair job plus the receipt needed to delete it.
type Message struct {
	ID         string
	PopReceipt string
	Text       string
}

// Queue is the transport for repair jobs.
type Queue interface {
	Enqueue(ctx context.Context, payload string) error
	// Dequeue returns the next message or nil when the queue is empty.
	Dequeue(ctx context.Context) (*Message, error)
	Delete(ctx context.Context, msg *Message) error
}

// AzureQueue backs Queue with an Azure storage queue.
type AzureQueue struct {
	client *azqueue.QueueClient
}

// NewAzureQueue creates a queue client from the given connection string.
func NewAzureQueue(connStr, queueName string) (*AzureQueue, error) {
	client, err := azqueue.NewQueueClientFromConnectionString(connStr, queueName, nil)
	if err != nil {
		return nil, err
	}
	return &AzureQueue{client: client}, nil
}

func (q *AzureQueue) Enqueue(ctx context.Context, payload string) error {
	_, err := q.client.EnqueueMessage(ctx, payload, nil)
	return err
}

func (q *AzureQueue) Dequeue(ctx context.Context) (*Message, error) {
	resp, err := q.client.DequeueMessage(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 {
		return nil, nil
	}
	msg := resp.Messages[0]
	return &Message{ID: *msg.MessageID, PopReceipt: *msg.PopReceipt, Text: *msg.MessageText}, nil
}

func (q *AzureQueue) Delete(ctx context.Context, msg *Message) error {
	_, err := q.client.DeleteMessage(ctx, msg.ID, msg.PopReceipt, nil)
	return err
}
