// Package bedrockjob implements the job engine port over Bedrock Data Automation
package bedrockjob

import (
	"context"

	perr "callrec/internal/platform/errors"
	"callrec/internal/services/transcribe/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	bdar "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	bdartypes "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
)

// Invoker is the slice of the runtime client this adapter needs
type Invoker interface {
	InvokeDataAutomationAsync(
		ctx context.Context,
		in *bdar.InvokeDataAutomationAsyncInput,
		optFns ...func(*bdar.Options),
	) (*bdar.InvokeDataAutomationAsyncOutput, error)
}

// Config pins the submission to one automation project and profile
type Config struct {
	ProjectARN string
	ProfileARN string
	Stage      string // DEVELOPMENT or LIVE
}

// Engine submits asynchronous analysis jobs
type Engine struct {
	c   Invoker
	cfg Config
}

// New wraps any Invoker, typically the runtime client
func New(c Invoker, cfg Config) *Engine {
	if c == nil {
		panic("bedrockjob.New requires a non nil client")
	}
	if cfg.ProjectARN == "" || cfg.ProfileARN == "" {
		panic("bedrockjob.New requires project and profile ARNs")
	}
	if cfg.Stage == "" {
		cfg.Stage = "LIVE"
	}
	return &Engine{c: c, cfg: cfg}
}

// NewFromConfig builds an Engine with a real runtime client
func NewFromConfig(awsCfg aws.Config, cfg Config) *Engine {
	return New(bdar.NewFromConfig(awsCfg), cfg)
}

// Submit starts one asynchronous job and returns its invocation reference
func (e *Engine) Submit(ctx context.Context, req domain.JobRequest) (domain.JobRef, error) {
	out, err := e.c.InvokeDataAutomationAsync(ctx, &bdar.InvokeDataAutomationAsyncInput{
		ClientToken: aws.String(req.ClientToken),
		InputConfiguration: &bdartypes.InputConfiguration{
			S3Uri: aws.String(req.InputS3URI),
		},
		OutputConfiguration: &bdartypes.OutputConfiguration{
			S3Uri: aws.String(req.OutputS3URI),
		},
		DataAutomationConfiguration: &bdartypes.DataAutomationConfiguration{
			DataAutomationProjectArn: aws.String(e.cfg.ProjectARN),
			Stage:                    bdartypes.DataAutomationStage(e.cfg.Stage),
		},
		DataAutomationProfileArn: aws.String(e.cfg.ProfileARN),
	})
	if err != nil {
		return domain.JobRef{}, perr.Wrap(err, perr.ErrorCodeUpstream, "invoke data automation")
	}
	return domain.JobRef{InvocationARN: aws.ToString(out.InvocationArn)}, nil
}
