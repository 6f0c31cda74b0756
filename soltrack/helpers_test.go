package soltrack_test

import (
	"context"
	"io/fs"
	"sync"
	"testing/fstest"

	"github.com/programme-lv/soltracker/solpath"
)

type put struct {
	TaskID     string
	SolutionID int64
	AuthorID   int64
	Lang       string
	Content    string
}

type recordingSink struct {
	mu   sync.Mutex
	puts []put
	fail map[int64]error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{fail: map[int64]error{}}
}

func (s *recordingSink) Put(_ context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[authorID]; ok {
		return err
	}
	s.puts = append(s.puts, put{
		TaskID:     taskID,
		SolutionID: solutionID,
		AuthorID:   authorID,
		Lang:       langName,
		Content:    string(content),
	})
	return nil
}

func (s *recordingSink) Puts() []put {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]put(nil), s.puts...)
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content), Mode: 0o644}
}

// exampleTree has two solutions of author 10, one of author 20 and a file
// that is not a solution.
func exampleTree() fstest.MapFS {
	return fstest.MapFS{
		"1/10/5.cpp": file("int main() { return 5; }"),
		"1/10/7.cpp": file("int main() { return 7; }"),
		"2/20/1.py":  file("print(1)"),
		"README.md":  file("solution archive"),
	}
}

// failingFS fails to list one directory and to read one file.
type failingFS struct {
	fstest.MapFS
	failDir  string
	failFile string
}

func (f failingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.failDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.ReadDir(name)
}

func (f failingFS) ReadFile(name string) ([]byte, error) {
	if name == f.failFile {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.ReadFile(name)
}

type panickingParser struct{}

func (panickingParser) Parse(path string) (solpath.SolutionPath, bool) {
	panic("cannot parse " + path)
}
