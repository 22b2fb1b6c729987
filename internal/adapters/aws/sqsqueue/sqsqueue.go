// Package sqsqueue runs a long-poll consume loop over one SQS queue
package sqsqueue

import (
	"context"
	"time"

	"callrec/internal/platform/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// API is the slice of the SQS client this runner needs
type API interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Config tunes the receive loop
type Config struct {
	QueueURL    string
	WaitSeconds int32 // long poll wait, default 20
	Batch       int32 // messages per receive, default 10
}

// Handler processes one delivered message body
// a nil return acknowledges the message; an error leaves it for redelivery
type Handler func(ctx context.Context, body []byte) error

// Runner consumes a queue until its context is canceled
type Runner struct {
	c      API
	cfg    Config
	handle Handler
}

// New constructs a Runner
func New(c API, cfg Config, handle Handler) *Runner {
	if c == nil {
		panic("sqsqueue.New requires a non nil client")
	}
	if cfg.QueueURL == "" {
		panic("sqsqueue.New requires a queue url")
	}
	if handle == nil {
		panic("sqsqueue.New requires a handler")
	}
	if cfg.WaitSeconds <= 0 {
		cfg.WaitSeconds = 20
	}
	if cfg.Batch <= 0 || cfg.Batch > 10 {
		cfg.Batch = 10
	}
	return &Runner{c: c, cfg: cfg, handle: handle}
}

// Run blocks consuming messages until ctx is canceled, then returns nil
func (r *Runner) Run(ctx context.Context) error {
	log := logger.Named("sqsqueue")
	log.Info().Str("queue", r.cfg.QueueURL).Msg("consuming")

	for {
		if ctx.Err() != nil {
			log.Info().Msg("consumer stopped")
			return nil
		}

		out, err := r.c.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(r.cfg.QueueURL),
			MaxNumberOfMessages: r.cfg.Batch,
			WaitTimeSeconds:     r.cfg.WaitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("consumer stopped")
				return nil
			}
			log.Error().Err(err).Msg("receive failed")
			if !sleep(ctx, time.Second) {
				return nil
			}
			continue
		}

		// strictly sequential within the batch; one body's failure leaves only
		// that message for redelivery and does not stop the rest
		for _, m := range out.Messages {
			if err := r.handle(ctx, []byte(aws.ToString(m.Body))); err != nil {
				log.Error().Err(err).Msg("message handling failed; left for redelivery")
				continue
			}
			if _, err := r.c.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(r.cfg.QueueURL),
				ReceiptHandle: m.ReceiptHandle,
			}); err != nil {
				log.Error().Err(err).Msg("delete failed; message will redeliver")
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
