package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/programme-lv/soltracker/srvcerror"
)

// JsonResponse is the envelope of every JSON body soltracker writes and of
// the distributor responses it reads.
type JsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

const maxErrorBody = 1 << 16

func WriteSuccessJson(w http.ResponseWriter, data any) {
	writeJson(w, http.StatusOK, JsonResponse{
		Status: "success",
		Data:   data,
	})
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeJson(w, statusCode, JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	})
}

func writeJson(w http.ResponseWriter, statusCode int, resp JsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleError writes err as an error envelope. Service errors keep their
// code and public message; anything else becomes an internal error and
// its text is only logged.
func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		logger.Error("internal server error", "error", err)
		srvcErr = srvcerror.ErrInternalSE()
	} else if srvcErr.HttpStatusCode() >= http.StatusInternalServerError {
		logger.Error("service error", "error", err, "code", srvcErr.ErrorCode())
	} else {
		logger.Warn("service error", "error", err, "code", srvcErr.ErrorCode())
	}
	WriteErrorJson(w, srvcErr.Message(), srvcErr.HttpStatusCode(), srvcErr.ErrorCode())
}

// NotFound and MethodNotAllowed answer unknown routes with an envelope
// instead of a plain text body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorJson(w, "route not found", http.StatusNotFound, "not_found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteErrorJson(w, "method not allowed", http.StatusMethodNotAllowed, "method_not_allowed")
}

// ReadError decodes the error envelope of a failed response. It returns
// nil when the body is not an envelope carrying a message.
func ReadError(resp *http.Response) *srvcerror.Error {
	var envelope JsonResponse
	err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&envelope)
	if err != nil || envelope.ErrMsg == "" {
		return nil
	}
	return srvcerror.New(envelope.ErrCode, envelope.ErrMsg).
		SetHttpStatusCode(resp.StatusCode)
}
