// Package s3blob implements the blob fetch port over the S3 API
package s3blob

import (
	"context"
	"io"

	perr "callrec/internal/platform/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Getter is the slice of the S3 client this adapter needs
type Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store fetches blobs from S3
type Store struct{ c Getter }

// New wraps any Getter, typically *s3.Client
func New(c Getter) *Store {
	if c == nil {
		panic("s3blob.New requires a non nil client")
	}
	return &Store{c: c}
}

// NewFromConfig builds a Store with a real S3 client
func NewFromConfig(cfg aws.Config) *Store { return New(s3.NewFromConfig(cfg)) }

// Fetch reads one object fully into memory
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "get object s3://%s/%s", bucket, key)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "read object s3://%s/%s", bucket, key)
	}
	return b, nil
}
