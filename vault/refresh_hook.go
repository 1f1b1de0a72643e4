package vault

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/coconup/nomadpi-services-api/core"
)

// WebhookNotifier posts a credentials-changed event to a configured hook URL.
// Delivery is best effort: failures are logged and dropped so that the
// credential write path stays unaffected.
type WebhookNotifier struct {
	client core.OutboundClient
	url    string
	logger core.Logger
}

type WebhookOption func(*WebhookNotifier)

func WithWebhookLogger(logger core.Logger) WebhookOption {
	return func(n *WebhookNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewWebhookNotifier returns nil when no hook URL is configured; callers treat
// a nil notifier as "no hook".
func NewWebhookNotifier(client core.OutboundClient, hookURL string, opts ...WebhookOption) *WebhookNotifier {
	url := strings.TrimSpace(hookURL)
	if client == nil || url == "" {
		return nil
	}
	notifier := &WebhookNotifier{
		client: client,
		url:    url,
		logger: glog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(notifier)
	}
	return notifier
}

func (n *WebhookNotifier) CredentialsChanged(ctx context.Context, serviceID string) {
	if n == nil || n.client == nil {
		return
	}
	_, err := n.client.Do(ctx, core.OutboundRequest{
		Method: "POST",
		URL:    n.url,
		Body: map[string]any{
			"event":      "credentials_changed",
			"service_id": serviceID,
		},
	})
	if err != nil {
		n.logger.Error("credentials refresh hook failed", "service_id", serviceID, "error", err)
		return
	}
	n.logger.Info("credentials refresh hook delivered", "service_id", serviceID)
}

var _ core.RefreshNotifier = (*WebhookNotifier)(nil)
