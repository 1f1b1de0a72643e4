package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorBadInput           = "GATEWAY_BAD_INPUT"
	GatewayErrorNotFound           = "GATEWAY_NOT_FOUND"
	GatewayErrorConnectorNotFound  = "GATEWAY_CONNECTOR_NOT_FOUND"
	GatewayErrorUnsupportedPath    = "GATEWAY_UNSUPPORTED_PATH"
	GatewayErrorMissingCredentials = "GATEWAY_MISSING_CREDENTIALS"
	GatewayErrorVaultFailure       = "GATEWAY_VAULT_FAILURE"
	GatewayErrorUpstreamFailure    = "GATEWAY_UPSTREAM_FAILURE"
	GatewayErrorConfiguration      = "GATEWAY_CONFIGURATION"
	GatewayErrorInternal           = "GATEWAY_INTERNAL"
)

// MissingCredentialsReason is the machine-readable reason code relayed to
// callers so they can prompt re-authentication.
const MissingCredentialsReason = "missing_credentials"

const (
	upstreamStatusKey = "upstream_status"
	upstreamDataKey   = "upstream_data"
)

// NewMissingCredentialsError signals the distinguished non-exceptional
// unauthenticated condition: no credential record exists for the service.
func NewMissingCredentialsError(serviceID string) *goerrors.Error {
	return goerrors.New("core: no credentials stored for service", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(GatewayErrorMissingCredentials).
		WithMetadata(map[string]any{"service_id": strings.TrimSpace(serviceID)})
}

// IsMissingCredentials reports whether err is the missing-credentials signal.
// Callers must check this before treating a credential fetch as failed.
func IsMissingCredentials(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == GatewayErrorMissingCredentials
}

// NewUpstreamError wraps a normalized third-party failure. The {status, data}
// pair is preserved verbatim so transports can relay it unchanged.
func NewUpstreamError(status int, data any) *goerrors.Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return goerrors.New("core: upstream call failed", goerrors.CategoryExternal).
		WithCode(status).
		WithTextCode(GatewayErrorUpstreamFailure).
		WithMetadata(map[string]any{
			upstreamStatusKey: status,
			upstreamDataKey:   data,
		})
}

// UpstreamDetail extracts the verbatim {status, data} pair from an upstream
// error. A structured upstream error missing either field is treated as a
// connector implementation defect, not an upstream failure.
func UpstreamDetail(err error) (int, any, bool) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return 0, nil, false
	}
	if richErr.TextCode != GatewayErrorUpstreamFailure {
		return 0, nil, false
	}
	status, hasStatus := richErr.Metadata[upstreamStatusKey].(int)
	data, hasData := richErr.Metadata[upstreamDataKey]
	if !hasStatus || status == 0 || !hasData || data == nil {
		return 0, nil, false
	}
	return status, data, true
}

func gatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "connector") && strings.Contains(msg, "not registered"):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorConnectorNotFound)
	case strings.Contains(msg, "path") && strings.Contains(msg, "not supported"):
		return newGatewayError(err.Error(), goerrors.CategoryOperation, GatewayErrorUnsupportedPath)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "missing"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorBadInput
	case goerrors.CategoryNotFound:
		return GatewayErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return GatewayErrorMissingCredentials
	case goerrors.CategoryOperation:
		return GatewayErrorUnsupportedPath
	case goerrors.CategoryExternal:
		return GatewayErrorUpstreamFailure
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
