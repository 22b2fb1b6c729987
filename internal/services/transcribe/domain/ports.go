package domain

import "context"

// JobEngine submits asynchronous analysis jobs to the external engine
type JobEngine interface {
	Submit(ctx context.Context, req JobRequest) (JobRef, error)
}

// ServicePort is consumed by the queue runner
type ServicePort interface {
	HandleMessage(ctx context.Context, body []byte) error
}
