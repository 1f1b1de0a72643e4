// Package command exposes the credential write operations as go-command
// handlers so callers compose them with dispatchers and middleware.
package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/coconup/nomadpi-services-api/core"
)

// VaultWriter is the subset of the credential vault the commands mutate
// through.
type VaultWriter interface {
	Upsert(ctx context.Context, in core.SaveCredentialInput) (core.CredentialRecord, error)
	UpdateByID(ctx context.Context, id string, in core.SaveCredentialInput) (core.CredentialRecord, error)
	Delete(ctx context.Context, id string) error
}

type UpsertCredentialCommand struct {
	vault VaultWriter
}

func NewUpsertCredentialCommand(vault VaultWriter) *UpsertCredentialCommand {
	return &UpsertCredentialCommand{vault: vault}
}

func (c *UpsertCredentialCommand) Execute(ctx context.Context, msg UpsertCredentialMessage) error {
	if c == nil || c.vault == nil {
		return commandDependencyError("command: credential vault is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid upsert credential message")
	}
	out, err := c.vault.Upsert(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCredentialCommand struct {
	vault VaultWriter
}

func NewUpdateCredentialCommand(vault VaultWriter) *UpdateCredentialCommand {
	return &UpdateCredentialCommand{vault: vault}
}

func (c *UpdateCredentialCommand) Execute(ctx context.Context, msg UpdateCredentialMessage) error {
	if c == nil || c.vault == nil {
		return commandDependencyError("command: credential vault is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid update credential message")
	}
	out, err := c.vault.UpdateByID(ctx, msg.ID, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteCredentialCommand struct {
	vault VaultWriter
}

func NewDeleteCredentialCommand(vault VaultWriter) *DeleteCredentialCommand {
	return &DeleteCredentialCommand{vault: vault}
}

func (c *DeleteCredentialCommand) Execute(ctx context.Context, msg DeleteCredentialMessage) error {
	if c == nil || c.vault == nil {
		return commandDependencyError("command: credential vault is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid delete credential message")
	}
	return c.vault.Delete(ctx, msg.ID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
