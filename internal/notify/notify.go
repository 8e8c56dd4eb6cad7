// Package notify sends short text alerts to ntfy and Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Notifier delivers one message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// NTFY posts plain text to an ntfy topic URL.
type NTFY struct {
	endpoint string
	client   *http.Client
}

// NewNTFY creates a notifier for endpoint. A nil client uses http.DefaultClient.
func NewNTFY(endpoint string, client *http.Client) *NTFY {
	return &NTFY{endpoint: endpoint, client: client}
}

func (n *NTFY) Notify(ctx context.Context, message string) error {
	return Send(ctx, n.client, n.endpoint, message)
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
