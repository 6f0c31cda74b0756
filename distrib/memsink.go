package distrib

import (
	"context"
	"log/slog"
	"sync"
)

type PutCall struct {
	TaskID     string
	SolutionID int64
	AuthorID   int64
	LangName   string
	Content    []byte
}

// MemSink keeps every put in memory.
type MemSink struct {
	mu    sync.Mutex
	calls []PutCall
	fail  map[int64]error
}

func NewMemSink() *MemSink {
	return &MemSink{fail: make(map[int64]error)}
}

// FailFor makes puts of the author's solutions return err.
func (m *MemSink) FailFor(authorID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[authorID] = err
}

func (m *MemSink) Put(_ context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[authorID]; ok {
		return err
	}
	m.calls = append(m.calls, PutCall{
		TaskID:     taskID,
		SolutionID: solutionID,
		AuthorID:   authorID,
		LangName:   langName,
		Content:    content,
	})
	return nil
}

func (m *MemSink) Calls() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.calls...)
}

// LogSink only logs what would have been distributed.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	l.logger.InfoContext(ctx, "solution ready for distribution",
		"task_id", taskID,
		"solution_id", solutionID,
		"author_id", authorID,
		"lang", langName,
		"bytes", len(content))
	return nil
}
