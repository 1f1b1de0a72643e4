package manifest

import (
	"context"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/core"
)

func testServicesFS() fstest.MapFS {
	return fstest.MapFS{
		"blink-cameras/manifest.yaml": &fstest.MapFile{
			Data: []byte("service_name: Blink Cameras\nservice_type: cameras\nfeatures:\n  - login\n  - homescreen\n"),
		},
		"call-me-bot/manifest.yaml": &fstest.MapFile{
			Data: []byte("service_name: CallMeBot\nservice_type: messaging\nfeatures:\n  - whatsapp\n"),
		},
		"zigbee-hub/manifest.yaml": &fstest.MapFile{
			Data: []byte("service_name: Zigbee Hub\nservice_type: cameras\n"),
		},
	}
}

func newTestStore(t *testing.T, fsys fstest.MapFS) *Store {
	t.Helper()
	store, err := NewStore(fsys)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStoreLoad(t *testing.T) {
	store := newTestStore(t, testServicesFS())

	manifest, err := store.Load(context.Background(), "blink-cameras")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if manifest.ServiceID != "blink-cameras" {
		t.Fatalf("unexpected service id: %q", manifest.ServiceID)
	}
	if manifest.ServiceName != "Blink Cameras" || manifest.ServiceType != "cameras" {
		t.Fatalf("unexpected manifest: %+v", manifest)
	}
	if len(manifest.Features) != 2 || manifest.Features[0] != "login" {
		t.Fatalf("unexpected features: %#v", manifest.Features)
	}
}

func TestStoreLoad_NotFound(t *testing.T) {
	store := newTestStore(t, testServicesFS())

	_, err := store.Load(context.Background(), "unknown-id")
	if err == nil {
		t.Fatalf("expected not found error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.GatewayErrorNotFound {
		t.Fatalf("expected %s, got %s", core.GatewayErrorNotFound, richErr.TextCode)
	}
}

func TestStoreLoad_RejectsPathTraversal(t *testing.T) {
	store := newTestStore(t, testServicesFS())

	for _, id := range []string{"../secrets", "a/b", "", "  "} {
		if _, err := store.Load(context.Background(), id); err == nil {
			t.Fatalf("expected id %q to be rejected", id)
		}
	}
}

func TestStoreLoad_MalformedYAML(t *testing.T) {
	fsys := testServicesFS()
	fsys["broken/manifest.yaml"] = &fstest.MapFile{Data: []byte(":\n\t- not yaml")}
	store := newTestStore(t, fsys)

	if _, err := store.Load(context.Background(), "broken"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStoreListGrouped(t *testing.T) {
	store := newTestStore(t, testServicesFS())

	grouped, err := store.ListGrouped(context.Background())
	if err != nil {
		t.Fatalf("list grouped: %v", err)
	}
	cameras := grouped["cameras"]
	if len(cameras) != 2 {
		t.Fatalf("expected 2 camera services, got %d", len(cameras))
	}
	messaging := grouped["messaging"]
	if len(messaging) != 1 || messaging[0].ServiceID != "call-me-bot" {
		t.Fatalf("unexpected messaging group: %#v", messaging)
	}
	if messaging[0].ServiceName != "CallMeBot" {
		t.Fatalf("unexpected summary name: %q", messaging[0].ServiceName)
	}
}

func TestStoreValidateAll_NoShortCircuit(t *testing.T) {
	fsys := testServicesFS()
	// aaa-broken sorts first so a short-circuiting scan would never reach
	// the valid manifests.
	fsys["aaa-broken/manifest.yaml"] = &fstest.MapFile{
		Data: []byte("service_name: Broken Service\n"),
	}
	store := newTestStore(t, fsys)

	results, err := store.ValidateAll(context.Background())
	if err == nil {
		t.Fatalf("expected aggregate validation failure")
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 per-manifest results, got %d", len(results))
	}

	byID := map[string]core.ManifestValidation{}
	for _, result := range results {
		byID[result.ServiceID] = result
	}
	if byID["aaa-broken"].Valid() {
		t.Fatalf("expected aaa-broken to be invalid")
	}
	for _, id := range []string{"blink-cameras", "call-me-bot", "zigbee-hub"} {
		if !byID[id].Valid() {
			t.Fatalf("expected %s to be valid, got %v", id, byID[id].Err)
		}
	}
}

func TestStoreValidateAll_AllValid(t *testing.T) {
	store := newTestStore(t, testServicesFS())

	results, err := store.ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	for _, result := range results {
		if !result.Valid() {
			t.Fatalf("expected %s to be valid, got %v", result.ServiceID, result.Err)
		}
	}
}
