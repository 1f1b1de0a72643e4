package server

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/core"
)

// errMissingCommandResult indicates a command completed without storing its
// result in the context collector, which is a wiring defect.
var errMissingCommandResult = goerrors.New(
	"server: command completed without a result",
	goerrors.CategoryInternal,
).WithCode(http.StatusInternalServerError).WithTextCode(core.GatewayErrorInternal)
