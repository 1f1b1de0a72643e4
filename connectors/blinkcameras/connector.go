// Package blinkcameras integrates the Blink home camera API. Authentication
// is a two-step flow: login issues a client id and auth token, login-verify
// confirms the SMS pin and persists the resulting credentials for the
// data-plane calls.
package blinkcameras

import (
	"context"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/connectors"
	"github.com/coconup/nomadpi-services-api/core"
)

const ServiceID = "blink-cameras"

const defaultTier = "prod"

const authTokenHeader = "TOKEN_AUTH"

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
		return nil, fmt.Errorf("blinkcameras: outbound client is required")
	}
	return &Connector{
		Base:   base,
		client: client,
	}, nil
}

func (c *Connector) HandlePath(ctx context.Context, subPath string, data map[string]any) (core.DispatchResult, error) {
	switch subPath {
	case "login":
		return c.login(ctx, data)
	case "login-verify":
		return c.loginVerify(ctx, data)
	case "homescreen":
		return c.homescreen(ctx)
	case "refresh-thumbnail":
		return c.refreshThumbnail(ctx, data)
	default:
		return core.DispatchResult{}, c.UnsupportedPath(subPath)
	}
}

func baseURL(tier string) string {
	if tier == "" {
		tier = defaultTier
	}
	return fmt.Sprintf("https://rest-%s.immedia-semi.com", tier)
}

func (c *Connector) login(ctx context.Context, data map[string]any) (core.DispatchResult, error) {
	email := connectors.StringField(data, "email")
	password := connectors.StringField(data, "password")
	if email == "" || password == "" {
		return core.DispatchResult{}, badInput("blinkcameras: 'email' and 'password' are required")
	}

	res, err := c.client.Do(ctx, core.OutboundRequest{
		Method: http.MethodPost,
		URL:    baseURL(defaultTier) + "/api/v5/account/login",
		Body: map[string]any{
			"email":    email,
			"password": password,
		},
	})
	if err != nil {
		return core.DispatchResult{}, err
	}
	return core.DispatchResult{StatusCode: res.StatusCode, Data: res.Data}, nil
}

// loginVerify confirms the pin against Blink and, on success, persists the
// session as the service credentials so subsequent calls can authenticate.
func (c *Connector) loginVerify(ctx context.Context, data map[string]any) (core.DispatchResult, error) {
	tier := connectors.StringFieldDefault(data, "tier", defaultTier)
	accountID := connectors.StringField(data, "account_id")
	clientID := connectors.StringField(data, "client_id")
	pin := connectors.StringField(data, "pin")
	authToken := connectors.StringField(data, "auth_token")
	if accountID == "" || clientID == "" || authToken == "" {
		return core.DispatchResult{}, badInput("blinkcameras: 'account_id', 'client_id', and 'auth_token' are required")
	}

	res, err := c.client.Do(ctx, core.OutboundRequest{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/api/v4/account/%s/client/%s/pin/verify", baseURL(tier), accountID, clientID),
		Headers: map[string]string{authTokenHeader: authToken},
		Body:    map[string]any{"pin": pin},
	})
	if err != nil {
		return core.DispatchResult{}, err
	}

	if err := c.SaveCredentials(ctx, map[string]any{
		"client_id":  clientID,
		"account_id": accountID,
		"auth_token": authToken,
		"tier":       tier,
	}); err != nil {
		return core.DispatchResult{}, err
	}

	return core.DispatchResult{StatusCode: res.StatusCode, Data: res.Data}, nil
}

func (c *Connector) homescreen(ctx context.Context) (core.DispatchResult, error) {
	credentials, err := c.Credentials(ctx)
	if err != nil {
		return core.DispatchResult{}, err
	}
	tier := connectors.StringFieldDefault(credentials, "tier", defaultTier)
	accountID := connectors.StringField(credentials, "account_id")
	authToken := connectors.StringField(credentials, "auth_token")

	res, err := c.client.Do(ctx, core.OutboundRequest{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/api/v3/accounts/%s/homescreen", baseURL(tier), accountID),
		Headers: map[string]string{authTokenHeader: authToken},
	})
	if err != nil {
		return core.DispatchResult{}, err
	}
	return core.DispatchResult{StatusCode: res.StatusCode, Data: res.Data}, nil
}

func (c *Connector) refreshThumbnail(ctx context.Context, data map[string]any) (core.DispatchResult, error) {
	networkID := connectors.StringField(data, "network_id")
	cameraID := connectors.StringField(data, "camera_id")
	if networkID == "" || cameraID == "" {
		return core.DispatchResult{}, badInput("blinkcameras: 'network_id' and 'camera_id' are required")
	}

	credentials, err := c.Credentials(ctx)
	if err != nil {
		return core.DispatchResult{}, err
	}
	tier := connectors.StringFieldDefault(credentials, "tier", defaultTier)
	authToken := connectors.StringField(credentials, "auth_token")

	res, err := c.client.Do(ctx, core.OutboundRequest{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/network/%s/camera/%s/thumbnail", baseURL(tier), networkID, cameraID),
		Headers: map[string]string{authTokenHeader: authToken},
		Body:    map[string]any{},
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
