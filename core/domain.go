package core

import (
	"fmt"
	"strings"
	"time"
)

// ServiceManifest is the static descriptor of a service integration. Manifests
// are loaded from a per-service directory and are immutable once loaded.
type ServiceManifest struct {
	ServiceID   string   `yaml:"-" json:"service_id"`
	ServiceName string   `yaml:"service_name" json:"service_name"`
	ServiceType string   `yaml:"service_type" json:"service_type"`
	Features    []string `yaml:"features" json:"features,omitempty"`
}

func (m ServiceManifest) Validate() error {
	if strings.TrimSpace(m.ServiceID) == "" {
		return fmt.Errorf("core: manifest service_id is required")
	}
	if strings.TrimSpace(m.ServiceName) == "" {
		return fmt.Errorf("core: 'service_name' is missing in %s", m.ServiceID)
	}
	if strings.TrimSpace(m.ServiceType) == "" {
		return fmt.Errorf("core: 'service_type' is missing in %s", m.ServiceID)
	}
	return nil
}

// ManifestSummary is the grouped listing projection of a manifest.
type ManifestSummary struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
}

// ManifestValidation reports the outcome of validating a single manifest
// during a bulk scan.
type ManifestValidation struct {
	ServiceID string
	Err       error
}

func (v ManifestValidation) Valid() bool {
	return v.Err == nil
}

// CredentialRecord is the persisted, encrypted credential row for a service.
// Value always holds ciphertext; only the vault may produce or consume it.
type CredentialRecord struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Name      string    `json:"name"`
	Value     []byte    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DecryptedCredential is the transient plaintext view handed to connectors.
// It is never persisted.
type DecryptedCredential struct {
	ID        string         `json:"id"`
	ServiceID string         `json:"service_id"`
	Name      string         `json:"name"`
	Value     map[string]any `json:"value"`
}

// SaveCredentialInput carries a plaintext payload into the vault.
type SaveCredentialInput struct {
	ServiceID string         `json:"service_id"`
	Name      string         `json:"name"`
	Value     map[string]any `json:"value"`
}

func (in SaveCredentialInput) Validate() error {
	if strings.TrimSpace(in.ServiceID) == "" {
		return fmt.Errorf("core: credential service_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("core: credential name is required")
	}
	if in.Value == nil {
		return fmt.Errorf("core: credential value is required")
	}
	return nil
}

// DispatchRequest is the ephemeral value routed to a connector: the target
// service, the sub-path after the service segment, and the merged query and
// body fields.
type DispatchRequest struct {
	ServiceID string
	SubPath   string
	Data      map[string]any
}

// DispatchResult is the connector's final output, relayed upward verbatim.
type DispatchResult struct {
	StatusCode int
	Data       any
}

// OutboundRequest describes a third-party call performed on behalf of a
// connector.
type OutboundRequest struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
	Query   map[string]string
}

// UpstreamResponse is the normalized {status, data} shape of a successful
// third-party response.
type UpstreamResponse struct {
	StatusCode int
	Data       any
}
