package http

import (
	"net/http"

	"github.com/programme-lv/soltracker/httpjson"
	"github.com/programme-lv/soltracker/planglist"
)

// ProgrammingLang represents a programming language.
type ProgrammingLang struct {
	ID         string   `json:"id"`
	FullName   string   `json:"fullName"`
	Extensions []string `json:"extensions"`
	MonacoID   string   `json:"monacoId"`
	Enabled    bool     `json:"enabled"`
}

func (s *StatusServer) listProgrammingLangs(w http.ResponseWriter, r *http.Request) {
	langs := planglist.ListProgrammingLanguages()

	response := make([]ProgrammingLang, len(langs))
	for i, lang := range langs {
		response[i] = ProgrammingLang{
			ID:         lang.ID,
			FullName:   lang.FullName,
			Extensions: lang.Extensions,
			MonacoID:   lang.MonacoID,
			Enabled:    lang.Enabled,
		}
	}

	httpjson.WriteSuccessJson(w, response)
}
