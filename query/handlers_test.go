package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/coconup/nomadpi-services-api/core"
)

type stubCredentialReader struct {
	listFn  func(ctx context.Context) ([]core.CredentialRecord, error)
	fetchFn func(ctx context.Context, serviceID string) ([]core.DecryptedCredential, error)
}

func (s stubCredentialReader) List(ctx context.Context) ([]core.CredentialRecord, error) {
	if s.listFn == nil {
		return nil, fmt.Errorf("unexpected list call")
	}
	return s.listFn(ctx)
}

func (s stubCredentialReader) FetchDecrypted(ctx context.Context, serviceID string) ([]core.DecryptedCredential, error) {
	if s.fetchFn == nil {
		return nil, fmt.Errorf("unexpected fetch call")
	}
	return s.fetchFn(ctx, serviceID)
}

type stubManifestReader struct {
	loadFn func(ctx context.Context, serviceID string) (core.ServiceManifest, error)
	listFn func(ctx context.Context) (map[string][]core.ManifestSummary, error)
}

func (s stubManifestReader) Load(ctx context.Context, serviceID string) (core.ServiceManifest, error) {
	if s.loadFn == nil {
		return core.ServiceManifest{}, fmt.Errorf("unexpected load call")
	}
	return s.loadFn(ctx, serviceID)
}

func (s stubManifestReader) ListGrouped(ctx context.Context) (map[string][]core.ManifestSummary, error) {
	if s.listFn == nil {
		return nil, fmt.Errorf("unexpected list grouped call")
	}
	return s.listFn(ctx)
}

func TestListCredentialsQuery_DelegatesToReader(t *testing.T) {
	reader := stubCredentialReader{
		listFn: func(_ context.Context) ([]core.CredentialRecord, error) {
			return []core.CredentialRecord{{ID: "cred-1", ServiceID: "blink-cameras"}}, nil
		},
	}

	records, err := NewListCredentialsQuery(reader).Query(context.Background(), ListCredentialsMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].ID != "cred-1" {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestFetchDecryptedCredentialsQuery_DelegatesToReader(t *testing.T) {
	reader := stubCredentialReader{
		fetchFn: func(_ context.Context, serviceID string) ([]core.DecryptedCredential, error) {
			if serviceID != "call-me-bot" {
				t.Fatalf("expected call-me-bot, got %q", serviceID)
			}
			return []core.DecryptedCredential{{ServiceID: serviceID, Value: map[string]any{"api_key": "k"}}}, nil
		},
	}

	decrypted, err := NewFetchDecryptedCredentialsQuery(reader).Query(
		context.Background(),
		FetchDecryptedCredentialsMessage{ServiceID: "call-me-bot"},
	)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(decrypted) != 1 || decrypted[0].Value["api_key"] != "k" {
		t.Fatalf("unexpected result: %#v", decrypted)
	}
}

func TestFetchDecryptedCredentialsQuery_RequiresServiceID(t *testing.T) {
	_, err := NewFetchDecryptedCredentialsQuery(stubCredentialReader{}).Query(
		context.Background(),
		FetchDecryptedCredentialsMessage{},
	)
	if err == nil {
		t.Fatalf("expected validation error for missing service id")
	}
}

func TestGetManifestQuery_DelegatesToReader(t *testing.T) {
	reader := stubManifestReader{
		loadFn: func(_ context.Context, serviceID string) (core.ServiceManifest, error) {
			return core.ServiceManifest{ServiceID: serviceID, ServiceName: "Blink Cameras"}, nil
		},
	}

	manifest, err := NewGetManifestQuery(reader).Query(context.Background(), GetManifestMessage{ServiceID: "blink-cameras"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if manifest.ServiceName != "Blink Cameras" {
		t.Fatalf("unexpected manifest: %#v", manifest)
	}
}

func TestListServicesQuery_DelegatesToReader(t *testing.T) {
	reader := stubManifestReader{
		listFn: func(_ context.Context) (map[string][]core.ManifestSummary, error) {
			return map[string][]core.ManifestSummary{
				"cameras": {{ServiceID: "blink-cameras", ServiceName: "Blink Cameras"}},
			}, nil
		},
	}

	grouped, err := NewListServicesQuery(reader).Query(context.Background(), ListServicesMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(grouped["cameras"]) != 1 {
		t.Fatalf("unexpected grouping: %#v", grouped)
	}
}

func TestQueries_RequireReaders(t *testing.T) {
	if _, err := NewListCredentialsQuery(nil).Query(context.Background(), ListCredentialsMessage{}); err == nil {
		t.Fatalf("expected dependency error for list credentials")
	}
	if _, err := NewGetManifestQuery(nil).Query(context.Background(), GetManifestMessage{ServiceID: "x"}); err == nil {
		t.Fatalf("expected dependency error for get manifest")
	}
}
