package domain

import "context"

// BlobStore fetches result objects from the object store
type BlobStore interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// EventSink receives pipeline observability events
// implementations must be safe to fail; callers never let a sink error
// fail the message being processed
type EventSink interface {
	Emit(ctx context.Context, ev PipelineEvent) error
}

// ServicePort is consumed by the queue runner
type ServicePort interface {
	HandleMessage(ctx context.Context, body []byte) error
}
