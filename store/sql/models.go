package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/coconup/nomadpi-services-api/core"
)

// credentialRecord is the persisted shape of an encrypted credential. The
// service_id column carries a unique constraint so that insert-or-update can
// be resolved inside the database instead of by a read-then-write sequence.
type credentialRecord struct {
	bun.BaseModel `bun:"table:service_credentials,alias:scr"`

	ID        string    `bun:"id,pk"`
	ServiceID string    `bun:"service_id,notnull,unique"`
	Name      string    `bun:"name,notnull"`
	Value     []byte    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *credentialRecord) toDomain() core.CredentialRecord {
	if r == nil {
		return core.CredentialRecord{}
	}
	return core.CredentialRecord{
		ID:        r.ID,
		ServiceID: r.ServiceID,
		Name:      r.Name,
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newCredentialRecord(in core.CredentialRecord, now time.Time) *credentialRecord {
	return &credentialRecord{
		ID:        in.ID,
		ServiceID: in.ServiceID,
		Name:      in.Name,
		Value:     in.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
