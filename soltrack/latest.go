package soltrack

import (
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// Newer picks which of two solutions by the same author survives.
// The incoming one only wins with a strictly larger solution id, so
// equal ids keep whatever was seen first.
func Newer(old, incoming Solution) Solution {
	if incoming.SolutionID > old.SolutionID {
		return incoming
	}
	return old
}

// Latest keeps the most recent solution of every author.
// It is safe for concurrent use.
type Latest struct {
	byAuthor *xsync.MapOf[int64, Solution]
}

func NewLatest() *Latest {
	return &Latest{
		byAuthor: xsync.NewMapOf[int64, Solution](),
	}
}

// Offer merges sol into the set and reports whether sol is now the
// retained solution of its author.
func (l *Latest) Offer(sol Solution) bool {
	var took bool
	l.byAuthor.Compute(sol.AuthorID, func(old Solution, loaded bool) (Solution, bool) {
		if !loaded {
			took = true
			return sol, false
		}
		res := Newer(old, sol)
		took = res.SolutionID != old.SolutionID
		return res, false
	})
	return took
}

// Get returns the retained solution of an author.
func (l *Latest) Get(authorID int64) (Solution, bool) {
	return l.byAuthor.Load(authorID)
}

func (l *Latest) Len() int {
	return l.byAuthor.Size()
}

// Snapshot returns the retained solutions ordered by author id.
func (l *Latest) Snapshot() []Solution {
	res := make([]Solution, 0, l.byAuthor.Size())
	l.byAuthor.Range(func(_ int64, sol Solution) bool {
		res = append(res, sol)
		return true
	})
	slices.SortFunc(res, func(a, b Solution) int {
		switch {
		case a.AuthorID < b.AuthorID:
			return -1
		case a.AuthorID > b.AuthorID:
			return 1
		}
		return 0
	})
	return res
}
