package server

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/core"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeCredentialError renders CRUD failures. Bad input and not-found keep
// their status and message; everything else collapses to an opaque 500.
func (s *Server) writeCredentialError(w http.ResponseWriter, r *http.Request, err error) {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Code {
		case http.StatusBadRequest:
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": richErr.Message})
			return
		case http.StatusNotFound:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": richErr.Message})
			return
		}
	}
	s.logger.Error("credential request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal Server Error"})
}

// writeDispatchError renders connector failures. Only two shapes escape with
// detail: the missing-credentials signal and verbatim upstream relays. The
// rest is opaque.
func (s *Server) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsMissingCredentials(err) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": core.MissingCredentialsReason})
		return
	}
	if status, data, ok := core.UpstreamDetail(err); ok {
		writeJSON(w, status, data)
		return
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code == http.StatusBadRequest {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": richErr.Message})
		return
	}

	s.logger.Error("dispatch request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal Server Error"})
}
