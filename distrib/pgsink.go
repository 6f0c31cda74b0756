package distrib

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createLatestSolutionsSql = `
	CREATE TABLE IF NOT EXISTS latest_solutions (
		author_id   BIGINT PRIMARY KEY,
		task_id     TEXT NOT NULL,
		solution_id BIGINT NOT NULL,
		lang_name   TEXT NOT NULL,
		content     BYTEA NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

const upsertLatestSolutionSql = `
	INSERT INTO latest_solutions (
		author_id, task_id, solution_id, lang_name, content, updated_at
	) VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (author_id) DO UPDATE SET
		task_id = EXCLUDED.task_id,
		solution_id = EXCLUDED.solution_id,
		lang_name = EXCLUDED.lang_name,
		content = EXCLUDED.content,
		updated_at = EXCLUDED.updated_at
	WHERE latest_solutions.solution_id < EXCLUDED.solution_id
`

// PgSink upserts the latest solution of every author into Postgres.
type PgSink struct {
	logger *slog.Logger
	db     Execer
}

func NewPgSink(db Execer, logger *slog.Logger) *PgSink {
	return &PgSink{
		logger: logger,
		db:     db,
	}
}

func (p *PgSink) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, createLatestSolutionsSql)
	if err != nil {
		return fmt.Errorf("failed to create latest_solutions table: %w", err)
	}
	return nil
}

func (p *PgSink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	tag, err := p.db.Exec(ctx, upsertLatestSolutionSql,
		authorID,
		taskID,
		solutionID,
		langName,
		content,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert solution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		p.logger.Debug("postgres already holds a newer solution",
			"author_id", authorID,
			"solution_id", solutionID)
	}
	return nil
}
