// Package soltrack reconciles a filesystem solution archive into a
// distribution sink. One scan cycle walks the archive, keeps the latest
// solution of every author and forwards those to the sink.
package soltrack

import (
	"context"

	"github.com/programme-lv/soltracker/planglist"
	"github.com/programme-lv/soltracker/solpath"
)

// Solution is a single solution file found in the archive.
// It is never modified after the scanner produces it.
type Solution struct {
	TaskID     string
	SolutionID int64 // larger is more recent within one author
	AuthorID   int64
	Lang       planglist.ProgrammingLang
	Content    []byte
	Path       string // relative to the scan root
}

// PathParser turns a file path into solution metadata. It must be safe
// for concurrent use and must report false for paths it does not know.
type PathParser interface {
	Parse(path string) (solpath.SolutionPath, bool)
}

// Sink receives the retained solutions at the end of a scan.
// Implementations must tolerate concurrent and unordered calls.
type Sink interface {
	Put(
		ctx context.Context,
		taskID string,
		solutionID int64,
		authorID int64,
		langName string,
		content []byte,
	) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error

func (f SinkFunc) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	return f(ctx, taskID, solutionID, authorID, langName, content)
}
