package soltrack

import (
	"context"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/programme-lv/soltracker/logger"
	"golang.org/x/sync/errgroup"
)

type ScanStats struct {
	Files   int // regular files visited
	Matched int // files the parser recognised, each offered once
}

// Scanner walks a solution archive and streams every recognised
// solution to a callback.
type Scanner struct {
	fsys    fs.FS
	root    string
	parser  PathParser
	workers int
}

// NewScanner creates a scanner over root inside fsys. With workers > 1
// files are parsed and read concurrently and the offer callback passed
// to Scan must be safe for concurrent use.
func NewScanner(fsys fs.FS, root string, parser PathParser, workers int) *Scanner {
	if root == "" {
		root = "."
	}
	return &Scanner{
		fsys:    fsys,
		root:    root,
		parser:  parser,
		workers: workers,
	}
}

// Scan visits every regular file once. Any listing or read failure is
// returned as a *TraversalError and the scan stops; offers that already
// happened are the caller's to discard.
func (s *Scanner) Scan(ctx context.Context, offer func(Solution)) (ScanStats, error) {
	info, err := fs.Stat(s.fsys, s.root)
	if err != nil {
		return ScanStats{}, newTraversalError(s.root, err)
	}
	if !info.IsDir() {
		return ScanStats{}, newTraversalError(s.root, errNotDir)
	}

	if s.workers > 1 {
		return s.scanParallel(ctx, offer)
	}

	log := logger.FromContext(ctx)
	var stats ScanStats
	for path, err := range WalkFiles(s.fsys, s.root) {
		if err != nil {
			return stats, newTraversalError(path, err)
		}
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("scan interrupted: %w", err)
		}
		stats.Files++

		sol, ok, err := s.visit(path)
		if err != nil {
			return stats, err
		}
		if !ok {
			log.Debug("skipping file", "path", path)
			continue
		}
		stats.Matched++
		offer(sol)
	}
	return stats, nil
}

func (s *Scanner) scanParallel(ctx context.Context, offer func(Solution)) (ScanStats, error) {
	var files, matched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	paths := make(chan string)
	g.Go(func() (err error) {
		defer recoverPanic(&err)
		defer close(paths)
		for path, err := range WalkFiles(s.fsys, s.root) {
			if err != nil {
				return newTraversalError(path, err)
			}
			select {
			case paths <- path:
			case <-gctx.Done():
				return fmt.Errorf("scan interrupted: %w", gctx.Err())
			}
		}
		return nil
	})

	for i := 0; i < s.workers; i++ {
		g.Go(func() (err error) {
			defer recoverPanic(&err)
			for path := range paths {
				files.Add(1)
				sol, ok, err := s.visit(path)
				if err != nil {
					return err
				}
				if ok {
					matched.Add(1)
					offer(sol)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	stats := ScanStats{
		Files:   int(files.Load()),
		Matched: int(matched.Load()),
	}
	return stats, err
}

// recoverPanic turns a panic on a worker goroutine into its error, the
// tracker only recovers panics on the cycle goroutine itself.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = ErrCyclePanicked().SetDebug(fmt.Errorf("%v", r))
	}
}

// content is only read for files that parse
func (s *Scanner) visit(path string) (Solution, bool, error) {
	meta, ok := s.parser.Parse(path)
	if !ok {
		return Solution{}, false, nil
	}

	content, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		return Solution{}, false, newTraversalError(path, err)
	}

	return Solution{
		TaskID:     meta.TaskID,
		SolutionID: meta.SolutionID,
		AuthorID:   meta.AuthorID,
		Lang:       meta.Lang,
		Content:    content,
		Path:       path,
	}, true, nil
}
