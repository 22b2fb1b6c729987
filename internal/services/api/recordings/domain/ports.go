package domain

import "context"

// ServicePort is consumed by the http handlers
type ServicePort interface {
	Retrieve(ctx context.Context, in RetrieveInput) (Page, error)
}
