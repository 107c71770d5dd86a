package mail

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen caps the outbox; trimming is approximate.
const streamMaxLen = 10000

// Outbox appends messages to a Redis stream.
type Outbox struct {
	client redis.Cmdable
	stream string
}

func NewOutbox(client redis.Cmdable, stream string) *Outbox {
	return &Outbox{client: client, stream: stream}
}

func (o *Outbox) Enqueue(ctx context.Context, msg Message) error {
	err := o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: o.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: msg.Values(),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", o.stream, err)
	}
	return nil
}

// Inline delivers messages synchronously, for runs without Redis.
type Inline struct {
	Mailer Mailer
}

func (i Inline) Enqueue(ctx context.Context, msg Message) error {
	return i.Mailer.Send(ctx, msg)
}
