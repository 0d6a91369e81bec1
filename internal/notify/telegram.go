package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultTelegramAPI = "https://api.telegram.org"

// maxMessageRunes is Telegram's hard message size limit. Longer texts are
// truncated with a trailing ellipsis rather than rejected.
const maxMessageRunes = 4096

// TelegramNotifier implements Notifier via the Telegram Bot API. The tenant
// ID doubles as the chat ID, matching how subscriptions are keyed.
type TelegramNotifier struct {
	apiURL string
	token  string
	client *http.Client
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithAPIURL overrides the Telegram API base URL (used in tests).
func WithAPIURL(u string) TelegramOption {
	return func(t *TelegramNotifier) {
		t.apiURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramNotifier) {
		t.client = c
	}
}

// NewTelegramNotifier creates a notifier that sends via the given bot token.
func NewTelegramNotifier(token string, opts ...TelegramOption) *TelegramNotifier {
	t := &TelegramNotifier{
		apiURL: defaultTelegramAPI,
		token:  token,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// sendMessagePayload is the Bot API sendMessage JSON structure.
type sendMessagePayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send delivers text to the tenant's chat, truncating oversized messages.
func (t *TelegramNotifier) Send(ctx context.Context, tenantID, text string) error {
	payload := sendMessagePayload{
		ChatID: tenantID,
		Text:   Truncate(text),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("telegram rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return fmt.Errorf("telegram returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

// Truncate shortens text to Telegram's message limit, marking the cut.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:maxMessageRunes-3]) + "..."
}
