package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/coconup/nomadpi-services-api/core"
)

type stubVaultWriter struct {
	upsertFn func(ctx context.Context, in core.SaveCredentialInput) (core.CredentialRecord, error)
	updateFn func(ctx context.Context, id string, in core.SaveCredentialInput) (core.CredentialRecord, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s stubVaultWriter) Upsert(ctx context.Context, in core.SaveCredentialInput) (core.CredentialRecord, error) {
	if s.upsertFn == nil {
		return core.CredentialRecord{}, fmt.Errorf("unexpected upsert call")
	}
	return s.upsertFn(ctx, in)
}

func (s stubVaultWriter) UpdateByID(ctx context.Context, id string, in core.SaveCredentialInput) (core.CredentialRecord, error) {
	if s.updateFn == nil {
		return core.CredentialRecord{}, fmt.Errorf("unexpected update call")
	}
	return s.updateFn(ctx, id, in)
}

func (s stubVaultWriter) Delete(ctx context.Context, id string) error {
	if s.deleteFn == nil {
		return fmt.Errorf("unexpected delete call")
	}
	return s.deleteFn(ctx, id)
}

func TestUpsertCredentialCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.CredentialRecord{ID: "cred-1", ServiceID: "blink-cameras", Name: "Blink Cameras"}
	called := false

	vault := stubVaultWriter{
		upsertFn: func(_ context.Context, in core.SaveCredentialInput) (core.CredentialRecord, error) {
			called = true
			if in.ServiceID != "blink-cameras" {
				t.Fatalf("expected service blink-cameras, got %q", in.ServiceID)
			}
			return expected, nil
		},
	}

	cmd := NewUpsertCredentialCommand(vault)
	collector := gocmd.NewResult[core.CredentialRecord]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, UpsertCredentialMessage{Input: core.SaveCredentialInput{
		ServiceID: "blink-cameras",
		Name:      "Blink Cameras",
		Value:     map[string]any{"auth_token": "tok"},
	}})
	if err != nil {
		t.Fatalf("execute upsert: %v", err)
	}
	if !called {
		t.Fatalf("expected vault upsert invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != expected.ID || result.ServiceID != expected.ServiceID {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestUpsertCredentialCommand_RejectsInvalidMessage(t *testing.T) {
	cmd := NewUpsertCredentialCommand(stubVaultWriter{})

	err := cmd.Execute(context.Background(), UpsertCredentialMessage{Input: core.SaveCredentialInput{
		Name:  "Blink Cameras",
		Value: map[string]any{"auth_token": "tok"},
	}})
	if err == nil {
		t.Fatalf("expected validation error for missing service id")
	}
}

func TestUpdateCredentialCommand_ExecuteDelegates(t *testing.T) {
	called := false
	vault := stubVaultWriter{
		updateFn: func(_ context.Context, id string, in core.SaveCredentialInput) (core.CredentialRecord, error) {
			called = true
			if id != "cred-1" {
				t.Fatalf("expected cred-1, got %q", id)
			}
			return core.CredentialRecord{ID: id, ServiceID: in.ServiceID}, nil
		},
	}

	cmd := NewUpdateCredentialCommand(vault)
	err := cmd.Execute(context.Background(), UpdateCredentialMessage{
		ID: "cred-1",
		Input: core.SaveCredentialInput{
			ServiceID: "call-me-bot",
			Name:      "CallMeBot",
			Value:     map[string]any{"api_key": "k"},
		},
	})
	if err != nil {
		t.Fatalf("execute update: %v", err)
	}
	if !called {
		t.Fatalf("expected vault update invocation")
	}
}

func TestUpdateCredentialCommand_RequiresID(t *testing.T) {
	cmd := NewUpdateCredentialCommand(stubVaultWriter{})

	err := cmd.Execute(context.Background(), UpdateCredentialMessage{Input: core.SaveCredentialInput{
		ServiceID: "call-me-bot",
		Name:      "CallMeBot",
		Value:     map[string]any{"api_key": "k"},
	}})
	if err == nil {
		t.Fatalf("expected validation error for missing id")
	}
}

func TestDeleteCredentialCommand_ExecuteDelegates(t *testing.T) {
	called := false
	vault := stubVaultWriter{
		deleteFn: func(_ context.Context, id string) error {
			called = true
			if id != "cred-1" {
				t.Fatalf("expected cred-1, got %q", id)
			}
			return nil
		},
	}

	cmd := NewDeleteCredentialCommand(vault)
	if err := cmd.Execute(context.Background(), DeleteCredentialMessage{ID: "cred-1"}); err != nil {
		t.Fatalf("execute delete: %v", err)
	}
	if !called {
		t.Fatalf("expected vault delete invocation")
	}
}

func TestCommands_RequireVault(t *testing.T) {
	if err := NewUpsertCredentialCommand(nil).Execute(context.Background(), UpsertCredentialMessage{}); err == nil {
		t.Fatalf("expected dependency error for upsert")
	}
	if err := NewUpdateCredentialCommand(nil).Execute(context.Background(), UpdateCredentialMessage{}); err == nil {
		t.Fatalf("expected dependency error for update")
	}
	if err := NewDeleteCredentialCommand(nil).Execute(context.Background(), DeleteCredentialMessage{}); err == nil {
		t.Fatalf("expected dependency error for delete")
	}
}
