package api

import (
	"encoding/json"
	"net/http"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err to a status and writes the standard error body.
// Internal failures are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	statusCode := httpStatus(code)
	if statusCode == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, statusCode, errorBody{Code: code, Error: domain.MessageOf(err)})
}

func httpStatus(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func grpcError(err error) error {
	if err == nil {
		return nil
	}
	var c codes.Code
	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		c = codes.NotFound
	case domain.CodeValidation:
		c = codes.InvalidArgument
	case domain.CodeForbidden:
		c = codes.PermissionDenied
	case domain.CodeConflict:
		c = codes.AlreadyExists
	default:
		c = codes.Internal
	}
	return status.Error(c, domain.MessageOf(err))
}
