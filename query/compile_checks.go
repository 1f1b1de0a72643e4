package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/coconup/nomadpi-services-api/core"
)

var (
	_ gocmd.Querier[ListCredentialsMessage, []core.CredentialRecord]              = (*ListCredentialsQuery)(nil)
	_ gocmd.Querier[FetchDecryptedCredentialsMessage, []core.DecryptedCredential] = (*FetchDecryptedCredentialsQuery)(nil)
	_ gocmd.Querier[GetManifestMessage, core.ServiceManifest]                     = (*GetManifestQuery)(nil)
	_ gocmd.Querier[ListServicesMessage, map[string][]core.ManifestSummary]       = (*ListServicesQuery)(nil)
)
