package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisOpt asynq.RedisClientOpt, queueName string) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt),
		queue:  queueName,
	}
}

// EnqueueProcessLogo schedules one logo. The task id is derived from the run
// and the output name, so re-enqueueing the same run is rejected by asynq.
func (c *Client) EnqueueProcessLogo(ctx context.Context, payload ProcessLogoPayload) (*asynq.TaskInfo, error) {
	task, err := NewProcessLogoTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(c.queue),
		asynq.TaskID(TaskID(payload)),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
}

func TaskID(payload ProcessLogoPayload) string {
	return payload.RunID + ":" + payload.OutputName
}

func (c *Client) Close() error {
	return c.client.Close()
}
