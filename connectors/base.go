package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/coconup/nomadpi-services-api/core"
)

// Base carries the collaborators every connector shares. Connectors embed it
// and add their own path handlers.
type Base struct {
	serviceID string
	vault     core.CredentialVault
	manifests core.ManifestStore
}

func NewBase(serviceID string, vault core.CredentialVault, manifests core.ManifestStore) (Base, error) {
	trimmedServiceID := strings.TrimSpace(serviceID)
	if trimmedServiceID == "" {
		return Base{}, fmt.Errorf("connectors: service id is required")
	}
	if vault == nil {
		return Base{}, fmt.Errorf("connectors: credential vault is required")
	}
	if manifests == nil {
		return Base{}, fmt.Errorf("connectors: manifest store is required")
	}
	return Base{
		serviceID: trimmedServiceID,
		vault:     vault,
		manifests: manifests,
	}, nil
}

func (b Base) ID() string {
	return b.serviceID
}

// ServiceName resolves the display name from the connector's manifest.
func (b Base) ServiceName(ctx context.Context) (string, error) {
	if b.manifests == nil {
		return "", fmt.Errorf("connectors: manifest store is required")
	}
	manifest, err := b.manifests.Load(ctx, b.serviceID)
	if err != nil {
		return "", err
	}
	return manifest.ServiceName, nil
}

// Credentials returns the decrypted payload stored for this connector's
// service. Absence is a missing-credentials signal, not an internal failure.
func (b Base) Credentials(ctx context.Context) (map[string]any, error) {
	if b.vault == nil {
		return nil, fmt.Errorf("connectors: credential vault is required")
	}
	decrypted, err := b.vault.FetchDecrypted(ctx, b.serviceID)
	if err != nil {
		return nil, err
	}
	if len(decrypted) == 0 {
		return nil, core.NewMissingCredentialsError(b.serviceID)
	}
	return decrypted[0].Value, nil
}

// SaveCredentials persists the payload under this connector's service id,
// using the manifest's display name for the record.
func (b Base) SaveCredentials(ctx context.Context, value map[string]any) error {
	if b.vault == nil {
		return fmt.Errorf("connectors: credential vault is required")
	}
	name, err := b.ServiceName(ctx)
	if err != nil {
		return err
	}
	_, err = b.vault.Upsert(ctx, core.SaveCredentialInput{
		ServiceID: b.serviceID,
		Name:      name,
		Value:     value,
	})
	return err
}

func (b Base) UnsupportedPath(subPath string) error {
	return core.NewUnsupportedPathError(b.serviceID, subPath)
}

// StringField reads a string-valued key out of a request payload, tolerating
// absent maps.
func StringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	value, ok := data[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// StringFieldDefault reads a string-valued key, falling back when the key is
// absent or blank.
func StringFieldDefault(data map[string]any, key string, fallback string) string {
	if value := StringField(data, key); value != "" {
		return value
	}
	return fallback
}
