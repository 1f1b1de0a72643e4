package core

import (
	"fmt"
	"strings"
)

type HTTPConfig struct {
	Addr           string   `koanf:"addr" mapstructure:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins" mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

type Config struct {
	ServiceName   string         `koanf:"service_name" mapstructure:"service_name"`
	EncryptionKey string         `koanf:"encryption_key" mapstructure:"encryption_key"`
	RefreshHook   string         `koanf:"refresh_hook" mapstructure:"refresh_hook"`
	HTTP          HTTPConfig     `koanf:"http" mapstructure:"http"`
	Database      DatabaseConfig `koanf:"database" mapstructure:"database"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "nomadpi-services-api",
		HTTP: HTTPConfig{
			Addr: ":3000",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "file:nomadpi.db?_foreign_keys=on",
		},
	}
}

// Validate enforces the startup-fatal configuration requirements: the
// symmetric encryption key and the cross-origin allow-list must be supplied
// out-of-band.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.EncryptionKey) == "" {
		return fmt.Errorf("core: encryption_key is required")
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		return fmt.Errorf("core: http.allowed_origins is required")
	}
	if strings.TrimSpace(c.Database.Driver) == "" {
		return fmt.Errorf("core: database.driver is required")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("core: database.dsn is required")
	}
	return nil
}
