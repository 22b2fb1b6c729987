package main

import (
	"context"
	"os/signal"
	"syscall"

	"callrec/internal/adapters/aws/awsconf"
	"callrec/internal/adapters/aws/s3blob"
	"callrec/internal/adapters/aws/sqsqueue"
	"callrec/internal/modkit"
	"callrec/internal/platform/config"
	"callrec/internal/platform/logger"
	"callrec/internal/platform/store"

	persistmod "callrec/internal/services/persist/module"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	root := config.New()
	awsCfgScope := root.Prefix("AWS_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	sqsCfg := root.Prefix("SQS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayString("DBURL", "") != "",
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "callrec",
			ClientTag:  "persister",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	awsCfg, err := awsconf.Load(ctx, awsCfgScope.MayString("REGION", ""))
	if err != nil {
		l.Panic().Err(err).Msg("awsconf.Load failed")
	}

	opts := persistmod.FromConfig(root)
	opts.Blobs = s3blob.NewFromConfig(awsCfg)
	mod := persistmod.New(modkit.Deps{Cfg: root, Log: *l, PG: st.PG, CH: st.CH}, opts)

	runner := sqsqueue.New(
		sqs.NewFromConfig(awsCfg),
		sqsqueue.Config{
			QueueURL:    sqsCfg.MustString("COMPLETION_QUEUE_URL"),
			WaitSeconds: int32(sqsCfg.MayInt("WAIT_SECONDS", 20)),
			Batch:       int32(sqsCfg.MayInt("BATCH", 10)),
		},
		mod.Handler(),
	)

	if err := runner.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("persister worker failed")
	}
}
