package planglist

import (
	"strings"
)

// ProgrammingLang describes a language a solution can be written in.
type ProgrammingLang struct {
	ID         string
	FullName   string   // display name, passed on to distribution sinks
	Extensions []string // without the leading dot, first one is canonical
	MonacoID   string
	Enabled    bool
}

func ListProgrammingLanguages() []ProgrammingLang {
	return getHardcodedLanguageList()
}

func GetProgrammingLanguageById(id string) (*ProgrammingLang, error) {
	for _, lang := range getHardcodedLanguageList() {
		if lang.ID == id {
			return &lang, nil
		}
	}
	return nil, ErrInvalidProgLang(id)
}

// GetProgrammingLanguageByExt returns the enabled language that owns the
// file extension. Older disabled versions are only used when no enabled
// language claims the extension.
func GetProgrammingLanguageByExt(ext string) (*ProgrammingLang, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil, false
	}

	var fallback *ProgrammingLang
	for _, lang := range getHardcodedLanguageList() {
		for _, e := range lang.Extensions {
			if e != ext {
				continue
			}
			if lang.Enabled {
				return &lang, true
			}
			if fallback == nil {
				l := lang
				fallback = &l
			}
		}
	}
	return fallback, fallback != nil
}

func getHardcodedLanguageList() []ProgrammingLang {
	return []ProgrammingLang{
		{
			ID:         "python3.10",
			FullName:   "Python 3.10",
			Extensions: []string{"py"},
			MonacoID:   "python",
			Enabled:    false,
		},
		{
			ID:         "python3.11",
			FullName:   "Python 3.11",
			Extensions: []string{"py"},
			MonacoID:   "python",
			Enabled:    true,
		},
		{
			ID:         "go1.19",
			FullName:   "Go 1.19",
			Extensions: []string{"go"},
			MonacoID:   "go",
			Enabled:    false,
		},
		{
			ID:         "go1.21",
			FullName:   "Go 1.21",
			Extensions: []string{"go"},
			MonacoID:   "go",
			Enabled:    true,
		},
		{
			ID:         "java21",
			FullName:   "Java SE 21",
			Extensions: []string{"java"},
			MonacoID:   "java",
			Enabled:    true,
		},
		{
			ID:         "cpp17",
			FullName:   "C++17 (GCC)",
			Extensions: []string{"cpp", "cc", "cxx"},
			MonacoID:   "cpp",
			Enabled:    true,
		},
		{
			ID:         "c11",
			FullName:   "C11 (GCC)",
			Extensions: []string{"c"},
			MonacoID:   "c",
			Enabled:    true,
		},
		{
			ID:         "kotlin1.9",
			FullName:   "Kotlin 1.9",
			Extensions: []string{"kt"},
			MonacoID:   "kotlin",
			Enabled:    true,
		},
	}
}
