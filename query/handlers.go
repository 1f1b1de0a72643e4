// Package query exposes the gateway's read operations as go-command queriers.
package query

import (
	"context"

	"github.com/coconup/nomadpi-services-api/core"
)

// CredentialReader is the subset of the vault the queries read through.
type CredentialReader interface {
	List(ctx context.Context) ([]core.CredentialRecord, error)
	FetchDecrypted(ctx context.Context, serviceID string) ([]core.DecryptedCredential, error)
}

// ManifestReader is the subset of the manifest store the queries read through.
type ManifestReader interface {
	Load(ctx context.Context, serviceID string) (core.ServiceManifest, error)
	ListGrouped(ctx context.Context) (map[string][]core.ManifestSummary, error)
}

type ListCredentialsQuery struct {
	reader CredentialReader
}

func NewListCredentialsQuery(reader CredentialReader) *ListCredentialsQuery {
	return &ListCredentialsQuery{reader: reader}
}

func (q *ListCredentialsQuery) Query(ctx context.Context, msg ListCredentialsMessage) ([]core.CredentialRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credential reader is required")
	}
	return q.reader.List(ctx)
}

type FetchDecryptedCredentialsQuery struct {
	reader CredentialReader
}

func NewFetchDecryptedCredentialsQuery(reader CredentialReader) *FetchDecryptedCredentialsQuery {
	return &FetchDecryptedCredentialsQuery{reader: reader}
}

func (q *FetchDecryptedCredentialsQuery) Query(
	ctx context.Context,
	msg FetchDecryptedCredentialsMessage,
) ([]core.DecryptedCredential, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credential reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: invalid fetch credentials message")
	}
	return q.reader.FetchDecrypted(ctx, msg.ServiceID)
}

type GetManifestQuery struct {
	reader ManifestReader
}

func NewGetManifestQuery(reader ManifestReader) *GetManifestQuery {
	return &GetManifestQuery{reader: reader}
}

func (q *GetManifestQuery) Query(ctx context.Context, msg GetManifestMessage) (core.ServiceManifest, error) {
	if q == nil || q.reader == nil {
		return core.ServiceManifest{}, queryDependencyError("query: manifest reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.ServiceManifest{}, queryWrapValidation(err, "query: invalid get manifest message")
	}
	return q.reader.Load(ctx, msg.ServiceID)
}

type ListServicesQuery struct {
	reader ManifestReader
}

func NewListServicesQuery(reader ManifestReader) *ListServicesQuery {
	return &ListServicesQuery{reader: reader}
}

func (q *ListServicesQuery) Query(
	ctx context.Context,
	msg ListServicesMessage,
) (map[string][]core.ManifestSummary, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: manifest reader is required")
	}
	return q.reader.ListGrouped(ctx)
}
