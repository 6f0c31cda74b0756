package soltrack

import (
	"context"
	"log/slog"
)

// ForwardReport is the per author outcome of one forward pass.
type ForwardReport struct {
	Forwarded []int64
	Failed    map[int64]error
}

// Err returns a *ForwardError if any solution was not forwarded.
func (r ForwardReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &ForwardError{Failed: r.Failed}
}

// Forward puts every solution into the sink. A failing put is logged and
// recorded, and the remaining solutions are still forwarded.
func Forward(ctx context.Context, sols []Solution, sink Sink, logger *slog.Logger) ForwardReport {
	report := ForwardReport{
		Forwarded: make([]int64, 0, len(sols)),
		Failed:    make(map[int64]error),
	}

	for _, sol := range sols {
		log := logger.With(
			"author_id", sol.AuthorID,
			"solution_id", sol.SolutionID,
			"task_id", sol.TaskID,
		)

		if err := ctx.Err(); err != nil {
			report.Failed[sol.AuthorID] = err
			log.Warn("solution not forwarded", "error", err)
			continue
		}

		err := sink.Put(ctx,
			sol.TaskID,
			sol.SolutionID,
			sol.AuthorID,
			sol.Lang.FullName,
			sol.Content,
		)
		if err != nil {
			report.Failed[sol.AuthorID] = err
			log.Error("failed to forward solution", "error", err)
			continue
		}

		report.Forwarded = append(report.Forwarded, sol.AuthorID)
		log.Debug("forwarded solution", "lang", sol.Lang.FullName)
	}

	return report
}
