package main

import (
	"context"
	"os/signal"
	"syscall"

	"callrec/internal/adapters/aws/awsconf"
	"callrec/internal/adapters/aws/bedrockjob"
	"callrec/internal/adapters/aws/sqsqueue"
	"callrec/internal/modkit"
	"callrec/internal/platform/config"
	"callrec/internal/platform/logger"

	transmod "callrec/internal/services/transcribe/module"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	root := config.New()
	awsCfgScope := root.Prefix("AWS_")
	bedrockCfg := root.Prefix("BEDROCK_")
	sqsCfg := root.Prefix("SQS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconf.Load(ctx, awsCfgScope.MayString("REGION", ""))
	if err != nil {
		l.Panic().Err(err).Msg("awsconf.Load failed")
	}

	engine := bedrockjob.NewFromConfig(awsCfg, bedrockjob.Config{
		ProjectARN: bedrockCfg.MustString("PROJECT_ARN"),
		ProfileARN: bedrockCfg.MustString("PROFILE_ARN"),
		Stage:      bedrockCfg.MayString("BLUEPRINT_STAGE", "LIVE"),
	})

	opts := transmod.FromConfig(root)
	opts.Engine = engine
	mod := transmod.New(modkit.Deps{Cfg: root, Log: *l}, opts)

	runner := sqsqueue.New(
		sqs.NewFromConfig(awsCfg),
		sqsqueue.Config{
			QueueURL:    sqsCfg.MustString("NOTIFY_QUEUE_URL"),
			WaitSeconds: int32(sqsCfg.MayInt("WAIT_SECONDS", 20)),
			Batch:       int32(sqsCfg.MayInt("BATCH", 10)),
		},
		mod.Handler(),
	)

	if err := runner.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("transcriber worker failed")
	}
}
