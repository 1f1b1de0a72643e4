// Package callmebot sends WhatsApp notifications through the CallMeBot API.
package callmebot

import (
	"context"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/connectors"
	"github.com/coconup/nomadpi-services-api/core"
)

const ServiceID = "call-me-bot"

const apiBaseURL = "https://api.callmebot.com"

type Connector struct {
	connectors.Base
	client core.OutboundClient
}

func New(vault core.CredentialVault, manifests core.ManifestStore, client core.OutboundClient) (*Connector, error) {
	base, err := connectors.NewBase(ServiceID, vault, manifests)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("callmebot: outbound client is required")
	}
	return &Connector{
		Base:   base,
		client: client,
	}, nil
}

func (c *Connector) HandlePath(ctx context.Context, subPath string, data map[string]any) (core.DispatchResult, error) {
	switch subPath {
	case "whatsapp":
		return c.whatsapp(ctx, data)
	default:
		return core.DispatchResult{}, c.UnsupportedPath(subPath)
	}
}

func (c *Connector) whatsapp(ctx context.Context, data map[string]any) (core.DispatchResult, error) {
	phone := connectors.StringField(data, "phone")
	text := connectors.StringField(data, "text")
	if phone == "" || text == "" {
		return core.DispatchResult{}, badInput("callmebot: 'phone' and 'text' are required")
	}

	credentials, err := c.Credentials(ctx)
	if err != nil {
		return core.DispatchResult{}, err
	}
	apiKey := connectors.StringField(credentials, "api_key")

	res, err := c.client.Do(ctx, core.OutboundRequest{
		Method: http.MethodGet,
		URL:    apiBaseURL + "/whatsapp.php",
		Query: map[string]string{
			"apikey": apiKey,
			"phone":  phone,
			"text":   text,
		},
	})
	if err != nil {
		return core.DispatchResult{}, err
	}
	return core.DispatchResult{StatusCode: res.StatusCode, Data: res.Data}, nil
}

func badInput(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.GatewayErrorBadInput)
}

var _ core.Connector = (*Connector)(nil)
