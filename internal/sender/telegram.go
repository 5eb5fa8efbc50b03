package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/secrets"
)

const (
	secretTelegramBotToken = "telegram.bot_token"
	secretTelegramChatID   = "telegram.chat_id"
)

type TelegramClientOptions struct {
	BaseURL    string
	Secrets    *secrets.Service
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// TelegramClient posts messages through the Telegram Bot API sendMessage
// endpoint, retrying 429/5xx and transport errors with bounded backoff.
type TelegramClient struct {
	baseURL    string
	secrets    *secrets.Service
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewTelegramClient(opts TelegramClientOptions) *TelegramClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	return &TelegramClient{
		baseURL:    baseURL,
		secrets:    opts.Secrets,
		httpClient: httpClient,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

func (c *TelegramClient) Send(ctx context.Context, payload model.TelegramPayload) error {
	token, err := c.secrets.Get(ctx, secretTelegramBotToken)
	if err != nil {
		return fmt.Errorf("resolving telegram bot token: %w", err)
	}
	chatID, err := c.secrets.Get(ctx, secretTelegramChatID)
	if err != nil {
		return fmt.Errorf("resolving telegram chat id: %w", err)
	}

	text := payload.Text
	if payload.Title != "" {
		text = payload.Title + "\n" + text
	}

	body, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshaling telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, token)

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, retryDelay(attempt+1, "", c.baseDelay, c.maxDelay)); waitErr != nil {
					return waitErr
				}
				continue
			}
			return err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return nil
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, retryDelay(attempt+1, resp.Header.Get("Retry-After"), c.baseDelay, c.maxDelay)); waitErr != nil {
				return waitErr
			}
			continue
		}

		return fmt.Errorf("telegram send failed: status=%d message=%s", resp.StatusCode, telegramErrorMessage(respBody))
	}
}

func telegramErrorMessage(body []byte) string {
	var parsed struct {
		Description string `json:"description"`
	}
	if json.Unmarshal(body, &parsed) == nil && strings.TrimSpace(parsed.Description) != "" {
		return parsed.Description
	}
	return strings.TrimSpace(string(body))
}
