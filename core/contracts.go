package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// ManifestStore loads and validates per-service descriptors.
type ManifestStore interface {
	Load(ctx context.Context, serviceID string) (ServiceManifest, error)
	ListAll(ctx context.Context) ([]ServiceManifest, error)
	ListGrouped(ctx context.Context) (map[string][]ManifestSummary, error)
	ValidateAll(ctx context.Context) ([]ManifestValidation, error)
}

// SecretProvider owns symmetric encryption of credential payloads. Neither
// operation touches the backing store.
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// CredentialStore is the persistence seam for encrypted credential rows. Only
// the vault is permitted to read or write Value.
type CredentialStore interface {
	List(ctx context.Context) ([]CredentialRecord, error)
	ListByService(ctx context.Context, serviceID string) ([]CredentialRecord, error)
	Upsert(ctx context.Context, record CredentialRecord) (CredentialRecord, error)
	Update(ctx context.Context, record CredentialRecord) (CredentialRecord, error)
	Delete(ctx context.Context, id string) error
}

// CredentialVault is the encrypted credential lifecycle: serialize, encrypt,
// upsert, fetch-and-decrypt, delete.
type CredentialVault interface {
	List(ctx context.Context) ([]CredentialRecord, error)
	FetchDecrypted(ctx context.Context, serviceID string) ([]DecryptedCredential, error)
	Upsert(ctx context.Context, in SaveCredentialInput) (CredentialRecord, error)
	UpdateByID(ctx context.Context, id string, in SaveCredentialInput) (CredentialRecord, error)
	Delete(ctx context.Context, id string) error
}

// Connector is the capability contract every integration implements. A
// connector receives its own service id at construction; it never derives it
// from the runtime environment.
type Connector interface {
	ID() string
	ServiceName(ctx context.Context) (string, error)
	HandlePath(ctx context.Context, subPath string, data map[string]any) (DispatchResult, error)
}

// OutboundClient performs third-party network calls on behalf of connectors,
// normalizing failures into a uniform {status, data} error shape.
type OutboundClient interface {
	Do(ctx context.Context, req OutboundRequest) (UpstreamResponse, error)
}

// RefreshNotifier receives best-effort notifications after credential writes.
// Implementations must not block the write path on delivery failures.
type RefreshNotifier interface {
	CredentialsChanged(ctx context.Context, serviceID string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
