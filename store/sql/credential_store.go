package sqlstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/coconup/nomadpi-services-api/core"
)

// CredentialStore persists encrypted credential rows. It never inspects the
// value column; ciphertext goes in and out opaque.
type CredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*credentialRecord]
}

func (s *CredentialStore) List(ctx context.Context) ([]core.CredentialRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: credential store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.CredentialRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *CredentialStore) ListByService(ctx context.Context, serviceID string) ([]core.CredentialRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedServiceID := strings.TrimSpace(serviceID)
	if trimmedServiceID == "" {
		return nil, fmt.Errorf("sqlstore: service id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("service_id", "=", trimmedServiceID),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.CredentialRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// Upsert inserts a row for the service or replaces the existing one. The
// insert-or-update decision happens inside the database against the unique
// service_id constraint, so concurrent writers for the same service converge
// on a single row instead of racing a lookup.
func (s *CredentialStore) Upsert(ctx context.Context, in core.CredentialRecord) (core.CredentialRecord, error) {
	if s == nil || s.db == nil {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedServiceID := strings.TrimSpace(in.ServiceID)
	if trimmedServiceID == "" {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: service id is required")
	}
	if len(in.Value) == 0 {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: encrypted value is required")
	}

	now := time.Now().UTC()
	record := newCredentialRecord(in, now)
	record.ServiceID = trimmedServiceID
	record.Name = strings.TrimSpace(in.Name)
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (service_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: upsert credential for %q: %w", trimmedServiceID, err)
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) Update(ctx context.Context, in core.CredentialRecord) (core.CredentialRecord, error) {
	if s == nil || s.db == nil {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedID := strings.TrimSpace(in.ID)
	if trimmedID == "" {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: credential id is required")
	}

	record := &credentialRecord{
		ID:        trimmedID,
		ServiceID: strings.TrimSpace(in.ServiceID),
		Name:      strings.TrimSpace(in.Name),
		Value:     in.Value,
		UpdatedAt: time.Now().UTC(),
	}
	result, err := s.db.NewUpdate().
		Model(record).
		Column("service_id", "name", "value", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		return core.CredentialRecord{}, fmt.Errorf("sqlstore: update credential %q: %w", trimmedID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return core.CredentialRecord{}, notFoundError(trimmedID)
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: credential id is required")
	}
	result, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: delete credential %q: %w", trimmedID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return notFoundError(trimmedID)
	}
	return nil
}

func notFoundError(id string) error {
	return goerrors.New(fmt.Sprintf("sqlstore: credential %q not found", id), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.GatewayErrorNotFound)
}
