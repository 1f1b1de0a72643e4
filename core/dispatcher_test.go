package core

import (
	"context"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type stubManifestStore struct {
	known map[string]ServiceManifest
}

func (s stubManifestStore) Load(_ context.Context, serviceID string) (ServiceManifest, error) {
	manifest, ok := s.known[serviceID]
	if !ok {
		return ServiceManifest{}, goerrors.New(
			fmt.Sprintf("manifest: %s not found", serviceID),
			goerrors.CategoryNotFound,
		).WithTextCode(GatewayErrorNotFound)
	}
	return manifest, nil
}

func (s stubManifestStore) ListAll(context.Context) ([]ServiceManifest, error) {
	out := make([]ServiceManifest, 0, len(s.known))
	for _, manifest := range s.known {
		out = append(out, manifest)
	}
	return out, nil
}

func (s stubManifestStore) ListGrouped(context.Context) (map[string][]ManifestSummary, error) {
	return map[string][]ManifestSummary{}, nil
}

func (s stubManifestStore) ValidateAll(context.Context) ([]ManifestValidation, error) {
	return nil, nil
}

func newTestDispatcher(t *testing.T, manifests ManifestStore, connectors ...Connector) *Dispatcher {
	t.Helper()
	registry := NewConnectorRegistry()
	for _, connector := range connectors {
		if err := registry.Register(connector); err != nil {
			t.Fatalf("register connector: %v", err)
		}
	}
	dispatcher, err := NewDispatcher(manifests, registry)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return dispatcher
}

func TestDispatcher_InvokesConnector(t *testing.T) {
	manifests := stubManifestStore{known: map[string]ServiceManifest{
		"call-me-bot": {ServiceID: "call-me-bot", ServiceName: "CallMeBot", ServiceType: "messaging"},
	}}
	var gotSubPath string
	connector := testConnector{
		id: "call-me-bot",
		handle: func(_ context.Context, subPath string, data map[string]any) (DispatchResult, error) {
			gotSubPath = subPath
			return DispatchResult{StatusCode: 200, Data: map[string]any{"echo": data["text"]}}, nil
		},
	}

	dispatcher := newTestDispatcher(t, manifests, connector)
	result, err := dispatcher.Dispatch(context.Background(), DispatchRequest{
		ServiceID: "call-me-bot",
		SubPath:   "/whatsapp/",
		Data:      map[string]any{"text": "hello"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if gotSubPath != "whatsapp" {
		t.Fatalf("expected trimmed sub path %q, got %q", "whatsapp", gotSubPath)
	}
	if result.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", result.StatusCode)
	}
}

func TestDispatcher_UnknownServiceDistinctFromUnknownPath(t *testing.T) {
	manifests := stubManifestStore{known: map[string]ServiceManifest{
		"blink-cameras": {ServiceID: "blink-cameras", ServiceName: "Blink Cameras", ServiceType: "cameras"},
		"ghost-service": {ServiceID: "ghost-service", ServiceName: "Ghost", ServiceType: "unknown"},
	}}
	connector := testConnector{
		id: "blink-cameras",
		handle: func(_ context.Context, subPath string, _ map[string]any) (DispatchResult, error) {
			return DispatchResult{}, NewUnsupportedPathError("blink-cameras", subPath)
		},
	}
	dispatcher := newTestDispatcher(t, manifests, connector)

	_, err := dispatcher.Dispatch(context.Background(), DispatchRequest{ServiceID: "ghost-service", SubPath: "anything"})
	if err == nil {
		t.Fatalf("expected unregistered service dispatch to fail")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != GatewayErrorConnectorNotFound {
		t.Fatalf("expected %s, got %s", GatewayErrorConnectorNotFound, richErr.TextCode)
	}

	_, err = dispatcher.Dispatch(context.Background(), DispatchRequest{ServiceID: "blink-cameras", SubPath: "bogus"})
	if err == nil {
		t.Fatalf("expected unknown sub path dispatch to fail")
	}
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != GatewayErrorUnsupportedPath {
		t.Fatalf("expected %s, got %s", GatewayErrorUnsupportedPath, richErr.TextCode)
	}
}

func TestDispatcher_ManifestLoadFailureIsOpaqueInternal(t *testing.T) {
	dispatcher := newTestDispatcher(t, stubManifestStore{known: map[string]ServiceManifest{}})

	_, err := dispatcher.Dispatch(context.Background(), DispatchRequest{ServiceID: "unknown-id", SubPath: "login"})
	if err == nil {
		t.Fatalf("expected dispatch to fail for missing manifest")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != GatewayErrorInternal {
		t.Fatalf("expected opaque internal error, got %s", richErr.TextCode)
	}
	if richErr.Code != 500 {
		t.Fatalf("expected 500, got %d", richErr.Code)
	}
}
