package core

import (
	"context"
	"testing"
)

type testConnector struct {
	id     string
	handle func(ctx context.Context, subPath string, data map[string]any) (DispatchResult, error)
}

func (c testConnector) ID() string { return c.id }

func (c testConnector) ServiceName(context.Context) (string, error) { return c.id, nil }

func (c testConnector) HandlePath(ctx context.Context, subPath string, data map[string]any) (DispatchResult, error) {
	if c.handle != nil {
		return c.handle(ctx, subPath, data)
	}
	return DispatchResult{StatusCode: 200}, nil
}

func TestConnectorRegistry_ListDeterministicOrder(t *testing.T) {
	registry := NewConnectorRegistry()
	for _, connector := range []Connector{
		testConnector{id: "zeta"},
		testConnector{id: "alpha"},
		testConnector{id: "beta"},
	} {
		if err := registry.Register(connector); err != nil {
			t.Fatalf("register connector: %v", err)
		}
	}

	listed := registry.List()
	if len(listed) != 3 {
		t.Fatalf("expected 3 connectors, got %d", len(listed))
	}

	got := []string{listed[0].ID(), listed[1].ID(), listed[2].ID()}
	want := []string{"alpha", "beta", "zeta"}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("unexpected ordering at index %d: got %v want %v", idx, got, want)
		}
	}
}

func TestConnectorRegistry_DuplicateIDRejected(t *testing.T) {
	registry := NewConnectorRegistry()
	if err := registry.Register(testConnector{id: "blink-cameras"}); err != nil {
		t.Fatalf("register connector: %v", err)
	}
	if err := registry.Register(testConnector{id: "blink-cameras"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestConnectorRegistry_ValidateAgainstManifests(t *testing.T) {
	registry := NewConnectorRegistry()
	if err := registry.Register(testConnector{id: "blink-cameras"}); err != nil {
		t.Fatalf("register connector: %v", err)
	}
	if err := registry.Register(testConnector{id: "ghost-service"}); err != nil {
		t.Fatalf("register connector: %v", err)
	}

	manifests := stubManifestStore{known: map[string]ServiceManifest{
		"blink-cameras": {ServiceID: "blink-cameras", ServiceName: "Blink Cameras", ServiceType: "cameras"},
	}}

	if err := registry.ValidateAgainst(context.Background(), manifests); err == nil {
		t.Fatalf("expected validation to fail for connector without manifest")
	}
}
