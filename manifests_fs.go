package gateway

import (
	"embed"
	"io/fs"
)

// servicesFS contains the per-service manifest tree shipped with the gateway.
// Each service lives under data/services/<service-id>/manifest.yaml.
//
//go:embed data/services/*/manifest.yaml
var servicesFS embed.FS

// GetServicesFS returns the embedded manifest tree rooted at data/services.
func GetServicesFS() (fs.FS, error) {
	return fs.Sub(servicesFS, "data/services")
}
