// Package distrib holds the sinks retained solutions are distributed to.
package distrib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/soltracker/conf"
	"github.com/programme-lv/soltracker/logger"
	"github.com/programme-lv/soltracker/s3bucket"
)

const (
	KindLog      = "log"
	KindSqs      = "sqs"
	KindS3       = "s3"
	KindDynamoDb = "dynamodb"
	KindPostgres = "postgres"
	KindHttp     = "http"
)

// SolutionMsg is the wire form of a distributed solution, used by the
// queue and HTTP sinks.
type SolutionMsg struct {
	MsgID      string    `json:"msg_id"`
	RunID      string    `json:"run_id,omitempty"`
	TaskID     string    `json:"task_id"`
	SolutionID int64     `json:"solution_id"`
	AuthorID   int64     `json:"author_id"`
	Lang       string    `json:"lang"`
	Content    []byte    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

func newSolutionMsg(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) (SolutionMsg, error) {
	msgID, err := uuid.NewV7()
	if err != nil {
		return SolutionMsg{}, fmt.Errorf("failed to generate message id: %w", err)
	}
	return SolutionMsg{
		MsgID:      msgID.String(),
		RunID:      logger.RunID(ctx),
		TaskID:     taskID,
		SolutionID: solutionID,
		AuthorID:   authorID,
		Lang:       langName,
		Content:    content,
		SentAt:     time.Now().UTC(),
	}, nil
}

// New builds the configured sinks. The returned fanout must be closed to
// release database pools.
func New(ctx context.Context, cfg conf.SinkConf, log *slog.Logger) (*Fanout, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("module", "distrib")

	fan := NewFanout()
	fail := func(err error) (*Fanout, error) {
		fan.Close()
		return nil, err
	}

	for _, kind := range cfg.Kinds {
		switch kind {
		case KindLog:
			fan.Add(kind, NewLogSink(log))

		case KindSqs:
			if cfg.SqsQueueUrl == "" {
				return fail(errors.New("sqs sink needs sqs_queue_url"))
			}
			awsCfg, err := loadAwsConfig(ctx, cfg.Region)
			if err != nil {
				return fail(err)
			}
			fan.Add(kind, NewSqsSink(sqs.NewFromConfig(awsCfg), cfg.SqsQueueUrl))

		case KindS3:
			if cfg.S3Bucket == "" {
				return fail(errors.New("s3 sink needs s3_bucket"))
			}
			bucket, err := s3bucket.NewS3Bucket(ctx, cfg.Region, cfg.S3Bucket)
			if err != nil {
				return fail(err)
			}
			fan.Add(kind, NewS3Sink(bucket))

		case KindDynamoDb:
			if cfg.DdbTable == "" {
				return fail(errors.New("dynamodb sink needs dynamodb_table"))
			}
			awsCfg, err := loadAwsConfig(ctx, cfg.Region)
			if err != nil {
				return fail(err)
			}
			fan.Add(kind, NewDynamoSink(dynamodb.NewFromConfig(awsCfg), cfg.DdbTable, log))

		case KindPostgres:
			connStr, err := cfg.Postgres.ConnString(ctx, cfg.Region)
			if err != nil {
				return fail(err)
			}
			pool, err := pgxpool.New(ctx, connStr)
			if err != nil {
				return fail(fmt.Errorf("failed to create postgres pool: %w", err))
			}
			fan.onClose(pool.Close)
			sink := NewPgSink(pool, log)
			if err := sink.EnsureSchema(ctx); err != nil {
				return fail(err)
			}
			fan.Add(kind, sink)

		case KindHttp:
			if cfg.DistributorUrl == "" || cfg.DistributorJwtKey == "" {
				return fail(errors.New("http sink needs distributor_url and distributor_jwt_key"))
			}
			client := &http.Client{Timeout: 30 * time.Second}
			fan.Add(kind, NewHttpSink(cfg.DistributorUrl, []byte(cfg.DistributorJwtKey), client))

		default:
			return fail(fmt.Errorf("unknown sink kind %q", kind))
		}
	}

	if fan.Len() == 0 {
		return fail(errors.New("no sink configured"))
	}
	return fan, nil
}

func loadAwsConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 10)
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return cfg, nil
}
