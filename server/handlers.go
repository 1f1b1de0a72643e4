package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	gocmd "github.com/goliatone/go-command"

	"github.com/coconup/nomadpi-services-api/command"
	"github.com/coconup/nomadpi-services-api/core"
	"github.com/coconup/nomadpi-services-api/query"
)

type credentialPayload struct {
	Name      string         `json:"name"`
	ServiceID string         `json:"service_id"`
	Value     map[string]any `json:"value"`
}

func (p credentialPayload) toInput() core.SaveCredentialInput {
	return core.SaveCredentialInput{
		ServiceID: p.ServiceID,
		Name:      p.Name,
		Value:     p.Value,
	}
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	records, err := s.listCredentials.Query(r.Context(), query.ListCredentialsMessage{})
	if err != nil {
		s.writeCredentialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var payload credentialPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	collector := gocmd.NewResult[core.CredentialRecord]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := s.upsertCommand.Execute(ctx, command.UpsertCredentialMessage{Input: payload.toInput()}); err != nil {
		s.writeCredentialError(w, r, err)
		return
	}
	record, ok := collector.Load()
	if !ok {
		s.writeCredentialError(w, r, errMissingCommandResult)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateCredential(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload credentialPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	collector := gocmd.NewResult[core.CredentialRecord]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := s.updateCommand.Execute(ctx, command.UpdateCredentialMessage{
		ID:    id,
		Input: payload.toInput(),
	}); err != nil {
		s.writeCredentialError(w, r, err)
		return
	}
	record, ok := collector.Load()
	if !ok {
		s.writeCredentialError(w, r, errMissingCommandResult)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deleteCommand.Execute(r.Context(), command.DeleteCredentialMessage{ID: id}); err != nil {
		s.writeCredentialError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.listServices.Query(r.Context(), query.ListServicesMessage{})
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	manifest, err := s.getManifest.Query(r.Context(), query.GetManifestMessage{ServiceID: serviceID})
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service_name": manifest.ServiceName,
		"service_type": manifest.ServiceType,
		"features":     manifest.Features,
	})
}

// handleDispatch routes any verb under /services/{serviceID}/ to the matching
// connector. Request data is the JSON body merged over the query string.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	subPath := chi.URLParam(r, "*")

	data := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		data[key] = values[0]
	}
	if r.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			for key, value := range body {
				data[key] = value
			}
		}
	}

	result, err := s.dispatcher.Dispatch(r.Context(), core.DispatchRequest{
		ServiceID: strings.TrimSpace(serviceID),
		SubPath:   subPath,
		Data:      data,
	})
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}

	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, result.Data)
}
