package query

import (
	"fmt"
	"strings"
)

const (
	TypeListCredentials  = "gateway.query.credential.list"
	TypeFetchCredentials = "gateway.query.credential.fetch_decrypted"
	TypeGetManifest      = "gateway.query.manifest.get"
	TypeListServices     = "gateway.query.manifest.list_grouped"
)

type ListCredentialsMessage struct{}

func (ListCredentialsMessage) Type() string { return TypeListCredentials }

func (ListCredentialsMessage) Validate() error { return nil }

type FetchDecryptedCredentialsMessage struct {
	ServiceID string
}

func (FetchDecryptedCredentialsMessage) Type() string { return TypeFetchCredentials }

func (m FetchDecryptedCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.ServiceID) == "" {
		return fmt.Errorf("query: service id is required")
	}
	return nil
}

type GetManifestMessage struct {
	ServiceID string
}

func (GetManifestMessage) Type() string { return TypeGetManifest }

func (m GetManifestMessage) Validate() error {
	if strings.TrimSpace(m.ServiceID) == "" {
		return fmt.Errorf("query: service id is required")
	}
	return nil
}

type ListServicesMessage struct{}

func (ListServicesMessage) Type() string { return TypeListServices }

func (ListServicesMessage) Validate() error { return nil }
