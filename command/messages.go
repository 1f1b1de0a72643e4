package command

import (
	"fmt"
	"strings"

	"github.com/coconup/nomadpi-services-api/core"
)

const (
	TypeUpsertCredential = "gateway.command.credential.upsert"
	TypeUpdateCredential = "gateway.command.credential.update"
	TypeDeleteCredential = "gateway.command.credential.delete"
)

type UpsertCredentialMessage struct {
	Input core.SaveCredentialInput
}

func (UpsertCredentialMessage) Type() string { return TypeUpsertCredential }

func (m UpsertCredentialMessage) Validate() error {
	return m.Input.Validate()
}

type UpdateCredentialMessage struct {
	ID    string
	Input core.SaveCredentialInput
}

func (UpdateCredentialMessage) Type() string { return TypeUpdateCredential }

func (m UpdateCredentialMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return m.Input.Validate()
}

type DeleteCredentialMessage struct {
	ID string
}

func (DeleteCredentialMessage) Type() string { return TypeDeleteCredential }

func (m DeleteCredentialMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return nil
}
