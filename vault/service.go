// Package vault owns the encrypted credential lifecycle. It is the only
// component that touches ciphertext: payloads are JSON-serialized, sealed
// through the secret provider on the way in, and opened transiently on the
// way out. Connectors only ever see decrypted payloads.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/coconup/nomadpi-services-api/core"
)

type Service struct {
	store    core.CredentialStore
	secrets  core.SecretProvider
	notifier core.RefreshNotifier
	logger   core.Logger
}

type Option func(*Service)

func WithRefreshNotifier(notifier core.RefreshNotifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithLogger(logger core.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store core.CredentialStore, secrets core.SecretProvider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("vault: credential store is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("vault: secret provider is required")
	}
	service := &Service{
		store:   store,
		secrets: secrets,
		logger:  glog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(service)
	}
	return service, nil
}

// List returns every credential record with the ciphertext stripped; the list
// surface never needs the value column.
func (s *Service) List(ctx context.Context) ([]core.CredentialRecord, error) {
	if s == nil || s.store == nil {
		return nil, vaultInternal("vault: service is not configured")
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, vaultWrap(err, "vault: list credentials")
	}
	redacted := make([]core.CredentialRecord, 0, len(records))
	for _, record := range records {
		record.Value = nil
		redacted = append(redacted, record)
	}
	return redacted, nil
}

// FetchDecrypted returns the decrypted payloads for a service. A service with
// no stored rows yields an empty slice, never nil and never an error; any
// decrypt or decode failure fails the whole fetch.
func (s *Service) FetchDecrypted(ctx context.Context, serviceID string) ([]core.DecryptedCredential, error) {
	if s == nil || s.store == nil {
		return nil, vaultInternal("vault: service is not configured")
	}
	id := strings.TrimSpace(serviceID)
	if id == "" {
		return nil, vaultBadInput("vault: service id is required")
	}

	records, err := s.store.ListByService(ctx, id)
	if err != nil {
		return nil, vaultWrap(err, "vault: fetch credentials")
	}

	decrypted := make([]core.DecryptedCredential, 0, len(records))
	for _, record := range records {
		plaintext, err := s.secrets.Decrypt(ctx, record.Value)
		if err != nil {
			return nil, vaultWrap(err, fmt.Sprintf("vault: decrypt credential %s", record.ID))
		}
		payload := map[string]any{}
		if err := json.Unmarshal(plaintext, &payload); err != nil {
			return nil, vaultWrap(err, fmt.Sprintf("vault: decode credential %s", record.ID))
		}
		decrypted = append(decrypted, core.DecryptedCredential{
			ID:        record.ID,
			ServiceID: record.ServiceID,
			Name:      record.Name,
			Value:     payload,
		})
	}
	return decrypted, nil
}

// Upsert serializes, encrypts, and writes the payload through the store's
// atomic insert-or-update keyed by service_id, then fires the refresh hook.
func (s *Service) Upsert(ctx context.Context, in core.SaveCredentialInput) (core.CredentialRecord, error) {
	if s == nil || s.store == nil {
		return core.CredentialRecord{}, vaultInternal("vault: service is not configured")
	}
	if err := in.Validate(); err != nil {
		return core.CredentialRecord{}, vaultBadInput(err.Error())
	}

	ciphertext, err := s.seal(ctx, in.Value)
	if err != nil {
		return core.CredentialRecord{}, err
	}

	saved, err := s.store.Upsert(ctx, core.CredentialRecord{
		ServiceID: strings.TrimSpace(in.ServiceID),
		Name:      strings.TrimSpace(in.Name),
		Value:     ciphertext,
	})
	if err != nil {
		return core.CredentialRecord{}, vaultWrap(err, "vault: upsert credential")
	}

	s.notifyChanged(ctx, saved.ServiceID)
	saved.Value = nil
	return saved, nil
}

// UpdateByID re-encrypts and replaces an existing row by surrogate key.
func (s *Service) UpdateByID(ctx context.Context, id string, in core.SaveCredentialInput) (core.CredentialRecord, error) {
	if s == nil || s.store == nil {
		return core.CredentialRecord{}, vaultInternal("vault: service is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.CredentialRecord{}, vaultBadInput("vault: credential id is required")
	}
	if err := in.Validate(); err != nil {
		return core.CredentialRecord{}, vaultBadInput(err.Error())
	}

	ciphertext, err := s.seal(ctx, in.Value)
	if err != nil {
		return core.CredentialRecord{}, err
	}

	saved, err := s.store.Update(ctx, core.CredentialRecord{
		ID:        trimmedID,
		ServiceID: strings.TrimSpace(in.ServiceID),
		Name:      strings.TrimSpace(in.Name),
		Value:     ciphertext,
	})
	if err != nil {
		return core.CredentialRecord{}, vaultWrap(err, "vault: update credential")
	}

	s.notifyChanged(ctx, saved.ServiceID)
	saved.Value = nil
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return vaultInternal("vault: service is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return vaultBadInput("vault: credential id is required")
	}
	if err := s.store.Delete(ctx, trimmedID); err != nil {
		return vaultWrap(err, "vault: delete credential")
	}
	return nil
}

func (s *Service) seal(ctx context.Context, value map[string]any) ([]byte, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, vaultWrap(err, "vault: serialize credential payload")
	}
	ciphertext, err := s.secrets.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, vaultWrap(err, "vault: encrypt credential payload")
	}
	return ciphertext, nil
}

// notifyChanged fires the best-effort refresh hook. The write path never
// blocks on, or fails because of, hook delivery.
func (s *Service) notifyChanged(ctx context.Context, serviceID string) {
	if s.notifier == nil {
		return
	}
	notifier := s.notifier
	go notifier.CredentialsChanged(context.WithoutCancel(ctx), serviceID)
}

func vaultInternal(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.GatewayErrorInternal)
}

func vaultBadInput(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.GatewayErrorBadInput)
}

func vaultWrap(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.GatewayErrorVaultFailure)
}

var _ core.CredentialVault = (*Service)(nil)
