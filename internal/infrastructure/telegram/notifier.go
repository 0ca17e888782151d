// Package telegram implements ports.Notifier against the Telegram Bot API's
// sendMessage method (§6.3's out-channel, consumed by the Notification
// Scheduler and the OAuth callback's welcome message).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hhbot/dispatcher/internal/shared/utils/logutil"
)

// maxDescriptionLogLen bounds how much of a Telegram API error description
// ends up in logs or wrapped errors.
const maxDescriptionLogLen = 200

// RequestTimeout bounds one sendMessage call.
const RequestTimeout = 10 * time.Second

const apiBase = "https://api.telegram.org/bot"

// Notifier sends plain-text messages to a Telegram chat by messenger id.
type Notifier struct {
	botToken   string
	httpClient *http.Client
}

// New builds a Notifier. botToken is the bot's API token from BotFather.
func New(botToken string) *Notifier {
	return &Notifier{
		botToken:   botToken,
		httpClient: &http.Client{Timeout: RequestTimeout},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts body to messengerID's chat. messengerID is the Telegram chat
// id as a string, matching user.User.MessengerID.
func (n *Notifier) Send(ctx context.Context, messengerID string, body string) error {
	if n.botToken == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}

	payload, err := json.Marshal(sendMessageRequest{ChatID: messengerID, Text: body})
	if err != nil {
		return fmt.Errorf("telegram: marshal request: %w", err)
	}

	url := apiBase + n.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram: sendMessage failed: %s", logutil.TruncateForLog(out.Description, maxDescriptionLogLen))
	}
	return nil
}
