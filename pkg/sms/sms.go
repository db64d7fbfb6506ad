package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/logger"
)

// Notifier sends a text message to a single recipient phone number.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// New returns the configured notifier. Dry-run mode logs instead of dialing
// the gateway, which is also the default when no gateway URL is set.
func New(cfg config.SMSConfig, logg *logger.Logger) Notifier {
	if cfg.DryRun || cfg.GatewayURL == "" {
		return &dryRunNotifier{logg: logg}
	}
	return &gatewayNotifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type dryRunNotifier struct {
	logg *logger.Logger
}

func (n *dryRunNotifier) Send(ctx context.Context, phone, message string) error {
	if n.logg != nil {
		ctx = n.logg.WithFields(ctx, map[string]any{
			"phone":   phone,
			"message": message,
		})
		n.logg.Info(ctx, "sms dry-run delivery")
	}
	return nil
}

type gatewayNotifier struct {
	cfg    config.SMSConfig
	client *http.Client
}

type gatewayRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func (n *gatewayNotifier) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(gatewayRequest{
		To:      phone,
		From:    n.cfg.Sender,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("encoding sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
