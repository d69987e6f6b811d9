package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

const internalErrorMessage = "Internal server error"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// writeError はドメインエラーを HTTP ステータスに変換して書き込みます。
// 想定外のエラーは詳細をログにだけ残します。
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, i9.ErrFormNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, zipcode.ErrNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, zipcode.ErrUnavailable),
		errors.Is(err, i9.ErrInvalidField),
		errors.Is(err, i9.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidID):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, i9.ErrInvalidTransition),
		errors.Is(err, i9.ErrAlreadySubmitted):
		writeFailure(w, http.StatusConflict, err.Error())
	default:
		logger.Error("http handler failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, internalErrorMessage)
	}
}
