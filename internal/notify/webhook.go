package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Channel delivers named events to an external listener. Sends are expected
// to be cheap; implementations must enforce a short timeout.
type Channel interface {
	Send(ctx context.Context, event string, payload any) error
}

// Webhook posts events to the configured endpoint with a bearer token.
type Webhook struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhook(url, token string) *Webhook {
	return &Webhook{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (w *Webhook) Send(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(struct {
		Event     string    `json:"event"`
		Timestamp time.Time `json:"timestamp"`
		Payload   any       `json:"payload,omitempty"`
	}{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", w.url, err)
	}

	if w.token != "" {
		request.Header.Set("Authorization", "Bearer "+w.token)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := w.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send notification to %s: %w", w.url, err)
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read notification response: %w", err)
	}

	if response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification rejected with status code %d. Body: %s", response.StatusCode, string(respBody))
	}

	return nil
}
