package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Dispatcher runs the linear resolve-manifest, resolve-connector, invoke
// sequence for an inbound request. Each dispatch re-resolves from scratch;
// there is no retry and no caching of manifests or connectors across calls.
type Dispatcher struct {
	manifests ManifestStore
	registry  *ConnectorRegistry
	logger    Logger
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewDispatcher(manifests ManifestStore, registry *ConnectorRegistry, opts ...DispatcherOption) (*Dispatcher, error) {
	if manifests == nil {
		return nil, fmt.Errorf("core: manifest store is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("core: connector registry is required")
	}
	dispatcher := &Dispatcher{
		manifests: manifests,
		registry:  registry,
		logger:    glog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(dispatcher)
	}
	return dispatcher, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	if d == nil {
		return DispatchResult{}, newGatewayError(
			"core: dispatcher is nil",
			goerrors.CategoryInternal,
			GatewayErrorInternal,
		)
	}
	serviceID := strings.TrimSpace(req.ServiceID)
	if serviceID == "" {
		return DispatchResult{}, newGatewayError(
			"core: service id is required",
			goerrors.CategoryBadInput,
			GatewayErrorBadInput,
		)
	}

	startedAt := time.Now().UTC()

	// Manifest resolution failures are opaque internal errors at this
	// boundary; only startup validation reports manifest detail.
	if _, err := d.manifests.Load(ctx, serviceID); err != nil {
		d.logger.Error("dispatch manifest resolution failed",
			"service_id", serviceID,
			"error", err.Error(),
		)
		return DispatchResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "core: resolve manifest").
			WithCode(http.StatusInternalServerError).
			WithTextCode(GatewayErrorInternal)
	}

	connector, ok := d.registry.Get(serviceID)
	if !ok {
		return DispatchResult{}, goerrors.New(
			fmt.Sprintf("core: connector not registered: %s", serviceID),
			goerrors.CategoryNotFound,
		).
			WithCode(http.StatusNotFound).
			WithTextCode(GatewayErrorConnectorNotFound).
			WithMetadata(map[string]any{"service_id": serviceID})
	}

	result, err := connector.HandlePath(ctx, strings.Trim(req.SubPath, "/"), req.Data)
	if err != nil {
		return DispatchResult{}, gatewayErrorMapper(err)
	}

	d.logger.Info("dispatch completed",
		"service_id", serviceID,
		"sub_path", req.SubPath,
		"status", result.StatusCode,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	return result, nil
}

// NewUnsupportedPathError is the connector-side signal for a sub-path outside
// a connector's declared set. Distinct from an unregistered service id.
func NewUnsupportedPathError(serviceID string, subPath string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("core: path %q is not supported by service %q", subPath, serviceID),
		goerrors.CategoryOperation,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(GatewayErrorUnsupportedPath).
		WithMetadata(map[string]any{"service_id": serviceID, "sub_path": subPath})
}
