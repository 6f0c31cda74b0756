package solpath_test

import (
	"sync"
	"testing"

	"github.com/programme-lv/soltracker/solpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParser(t *testing.T) {
	p := solpath.Default()

	tests := []struct {
		name   string
		path   string
		ok     bool
		task   string
		author int64
		sol    int64
		langID string
	}{
		{"relative", "kvadrati/10/5.cpp", true, "kvadrati", 10, 5, "cpp17"},
		{"nested", "archive/2024/kvadrati/10/7.py", true, "kvadrati", 10, 7, "python3.11"},
		{"absolute", "/srv/solutions/summa/20/1.java", true, "summa", 20, 1, "java21"},
		{"upper ext", "summa/20/3.GO", true, "summa", 20, 3, "go1.21"},
		{"unknown ext", "summa/20/1.txt", false, "", 0, 0, ""},
		{"author not a number", "summa/bob/1.cpp", false, "", 0, 0, ""},
		{"solution not a number", "summa/20/latest.cpp", false, "", 0, 0, ""},
		{"too shallow", "20/1.cpp", false, "", 0, 0, ""},
		{"readme", "summa/README.md", false, "", 0, 0, ""},
		{"author overflow", "summa/99999999999999999999/1.cpp", false, "", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.path)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.task, got.TaskID)
			assert.Equal(t, tt.author, got.AuthorID)
			assert.Equal(t, tt.sol, got.SolutionID)
			assert.Equal(t, tt.langID, got.Lang.ID)
		})
	}
}

func TestParseIsPure(t *testing.T) {
	p := solpath.Default()
	paths := []string{"a/1/2.cpp", "a/1/x.cpp", "nope"}

	for _, path := range paths {
		first, ok1 := p.Parse(path)
		second, ok2 := p.Parse(path)
		require.Equal(t, ok1, ok2)
		require.Equal(t, first, second)
	}
}

func TestParseConcurrently(t *testing.T) {
	p := solpath.Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, ok := p.Parse("task/42/17.cpp")
				assert.True(t, ok)
				assert.Equal(t, int64(17), got.SolutionID)
			}
		}()
	}
	wg.Wait()
}

func TestCustomPatternWithLangGroup(t *testing.T) {
	p, err := solpath.NewParser(`(?P<task>[a-z]+)_(?P<author>\d+)_(?P<solution>\d+)_(?P<lang>[a-z0-9.]+)\.src$`)
	require.NoError(t, err)

	got, ok := p.Parse("dump/summa_3_9_python3.10.src")
	require.True(t, ok)
	require.Equal(t, "summa", got.TaskID)
	require.Equal(t, int64(3), got.AuthorID)
	require.Equal(t, int64(9), got.SolutionID)
	require.Equal(t, "Python 3.10", got.Lang.FullName)

	_, ok = p.Parse("dump/summa_3_9_cobol.src")
	require.False(t, ok)
}

func TestNewParserValidatesGroups(t *testing.T) {
	_, err := solpath.NewParser(`(?P<task>\w+)/(?P<author>\d+)/(?P<solution>\d+)`)
	require.Error(t, err)

	_, err = solpath.NewParser(`(?P<task>\w+)/(?P<solution>\d+)\.(?P<ext>\w+)`)
	require.Error(t, err)

	_, err = solpath.NewParser(`(`)
	require.Error(t, err)
}
