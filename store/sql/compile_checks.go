package sqlstore

import "github.com/coconup/nomadpi-services-api/core"

var _ core.CredentialStore = (*CredentialStore)(nil)
