package distrib

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guregu/dynamo/v2"
	"github.com/guregu/dynamo/v2/dynamodbiface"
)

// LatestSolutionRow is one author's latest solution in DynamoDB.
type LatestSolutionRow struct {
	AuthorID   int64     `dynamo:"author_id,hash"` // Primary key
	TaskID     string    `dynamo:"task_id"`
	SolutionID int64     `dynamo:"solution_id"`
	LangName   string    `dynamo:"lang_name"`
	Content    []byte    `dynamo:"content"`
	UpdatedAt  time.Time `dynamo:"updated_at"`
}

// DynamoSink keeps the latest solution per author in a DynamoDB table.
// Rows holding an equal or newer solution id are left alone.
type DynamoSink struct {
	logger *slog.Logger
	table  dynamo.Table
}

// NewDynamoSink takes any DynamoDB client, *dynamodb.Client in production.
func NewDynamoSink(ddbClient dynamodbiface.DynamoDBAPI, tableName string, logger *slog.Logger) *DynamoSink {
	if logger == nil {
		logger = slog.Default()
	}
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoSink{
		logger: logger,
		table:  db.Table(tableName),
	}
}

func (d *DynamoSink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	row := &LatestSolutionRow{
		AuthorID:   authorID,
		TaskID:     taskID,
		SolutionID: solutionID,
		LangName:   langName,
		Content:    content,
		UpdatedAt:  time.Now().UTC(),
	}

	err := d.table.Put(row).
		If("attribute_not_exists(solution_id) OR solution_id < ?", solutionID).
		Run(ctx)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			d.logger.Debug("dynamodb already holds a newer solution",
				"author_id", authorID,
				"solution_id", solutionID)
			return nil
		}
		return fmt.Errorf("failed to put solution row: %w", err)
	}
	return nil
}
