package planglist

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/soltracker/srvcerror"
)

const ErrCodeInvalidProgLang = "invalid_programming_language"

// ErrInvalidProgLang reports a language id missing from the catalogue.
func ErrInvalidProgLang(id string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidProgLang,
		fmt.Sprintf("unknown programming language %q", id),
	).SetHttpStatusCode(http.StatusBadRequest)
}
