// Package solpath maps file paths of a solution archive to solution
// metadata. A Parser never fails on a path it does not understand, it
// simply reports a miss.
package solpath

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/programme-lv/soltracker/planglist"
)

// DefaultPattern matches "<task>/<author>/<solution>.<ext>" at the end of
// a slash separated path.
const DefaultPattern = `(?:^|/)(?P<task>[A-Za-z0-9_.-]+)/(?P<author>[0-9]+)/(?P<solution>[0-9]+)\.(?P<ext>[A-Za-z0-9]+)$`

const (
	groupTask     = "task"
	groupAuthor   = "author"
	groupSolution = "solution"
	groupLang     = "lang"
	groupExt      = "ext"
)

// SolutionPath is the metadata encoded in a solution file's path.
type SolutionPath struct {
	TaskID     string
	SolutionID int64
	AuthorID   int64
	Lang       planglist.ProgrammingLang
}

type Parser struct {
	re      *regexp.Regexp
	task    int
	author  int
	sol     int
	lang    int // -1 if the pattern has no lang group
	ext     int // -1 if the pattern has no ext group
	pattern string
}

// NewParser compiles a path grammar. The pattern must contain the named
// groups task, author and solution, plus lang (a language id) or ext
// (a file extension).
func NewParser(pattern string) (*Parser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern: %w", err)
	}

	p := &Parser{
		re:      re,
		task:    re.SubexpIndex(groupTask),
		author:  re.SubexpIndex(groupAuthor),
		sol:     re.SubexpIndex(groupSolution),
		lang:    re.SubexpIndex(groupLang),
		ext:     re.SubexpIndex(groupExt),
		pattern: pattern,
	}

	for name, idx := range map[string]int{
		groupTask:     p.task,
		groupAuthor:   p.author,
		groupSolution: p.sol,
	} {
		if idx < 0 {
			return nil, fmt.Errorf("path pattern is missing the %q group", name)
		}
	}
	if p.lang < 0 && p.ext < 0 {
		return nil, fmt.Errorf("path pattern needs a %q or %q group", groupLang, groupExt)
	}

	return p, nil
}

// Default returns the parser for DefaultPattern.
func Default() *Parser {
	p, err := NewParser(DefaultPattern)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parser) Pattern() string {
	return p.pattern
}

// Parse extracts solution metadata from path. The second result is false
// when the path is not part of the grammar.
func (p *Parser) Parse(path string) (SolutionPath, bool) {
	m := p.re.FindStringSubmatch(filepath.ToSlash(path))
	if m == nil {
		return SolutionPath{}, false
	}

	task := m[p.task]
	if task == "" {
		return SolutionPath{}, false
	}

	author, err := strconv.ParseInt(m[p.author], 10, 64)
	if err != nil {
		return SolutionPath{}, false
	}
	sol, err := strconv.ParseInt(m[p.sol], 10, 64)
	if err != nil {
		return SolutionPath{}, false
	}

	lang, ok := p.language(m)
	if !ok {
		return SolutionPath{}, false
	}

	return SolutionPath{
		TaskID:     task,
		SolutionID: sol,
		AuthorID:   author,
		Lang:       *lang,
	}, true
}

// an explicit language id wins over the extension
func (p *Parser) language(m []string) (*planglist.ProgrammingLang, bool) {
	if p.lang >= 0 && m[p.lang] != "" {
		lang, err := planglist.GetProgrammingLanguageById(m[p.lang])
		if err != nil {
			return nil, false
		}
		return lang, true
	}
	if p.ext >= 0 {
		return planglist.GetProgrammingLanguageByExt(m[p.ext])
	}
	return nil, false
}
