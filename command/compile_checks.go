package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[UpsertCredentialMessage] = (*UpsertCredentialCommand)(nil)
	_ gocmd.Commander[UpdateCredentialMessage] = (*UpdateCredentialCommand)(nil)
	_ gocmd.Commander[DeleteCredentialMessage] = (*DeleteCredentialCommand)(nil)
)
