package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

func (n *implNotifier) Enabled(category meeting.Category) bool {
	return n.webhookURL != "" && n.important[strings.ToLower(string(category))]
}

func (n *implNotifier) Notify(ctx context.Context, note Notification) error {
	if !n.Enabled(note.Category) {
		return nil
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(Payload(n.platform, note)); err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, buf)
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	n.logger.Info(ctx, "Notification sent to %s for %s (%s)", n.platform, note.File.Name, note.Category)
	return nil
}
