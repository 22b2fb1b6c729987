// Package domain holds types and ports for the transcription submission stage
package domain

import "fmt"

// OutputLocation is the engine's result destination for this deployment
type OutputLocation struct {
	Bucket string
	Prefix string
}

// URIFor returns the per-call destination the engine writes results under
// the trailing slash keeps the engine's own key layout below it
func (o OutputLocation) URIFor(callID string) string {
	return fmt.Sprintf("s3://%s/%s/%s/", o.Bucket, o.Prefix, callID)
}

// JobRequest is one asynchronous analysis submission
type JobRequest struct {
	ClientToken string
	InputS3URI  string
	OutputS3URI string
}

// JobRef is the engine's opaque handle for a submitted job
type JobRef struct {
	InvocationARN string
}
