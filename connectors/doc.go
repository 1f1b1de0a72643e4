// Package connectors holds the integrations exposed through the gateway.
// Each connector implements the capability contract over the shared outbound
// client and credential vault; the service id is injected at construction and
// must match a shipped manifest.
package connectors
