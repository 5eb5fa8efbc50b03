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
	secretNotionToken      = "notion.token"
	secretNotionDatabaseID = "notion.database_id"

	notionAPIVersion = "2022-06-28"
)

type NotionClientOptions struct {
	BaseURL    string
	Secrets    *secrets.Service
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NotionClient creates pages in an inbox database through the Notion API,
// retrying 429/5xx and transport errors with bounded backoff.
type NotionClient struct {
	baseURL    string
	secrets    *secrets.Service
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewNotionClient(opts NotionClientOptions) *NotionClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.notion.com"
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
	return &NotionClient{
		baseURL:    baseURL,
		secrets:    opts.Secrets,
		httpClient: httpClient,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

func (c *NotionClient) CreatePage(ctx context.Context, payload model.NotionPayload) (*NotionPage, error) {
	token, err := c.secrets.Get(ctx, secretNotionToken)
	if err != nil {
		return nil, fmt.Errorf("resolving notion token: %w", err)
	}
	databaseID, err := c.secrets.Get(ctx, secretNotionDatabaseID)
	if err != nil {
		return nil, fmt.Errorf("resolving notion database id: %w", err)
	}

	body, err := json.Marshal(notionCreatePageRequest(databaseID, payload))
	if err != nil {
		return nil, fmt.Errorf("marshaling notion request: %w", err)
	}

	url := c.baseURL + "/v1/pages"

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", notionAPIVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, retryDelay(attempt+1, "", c.baseDelay, c.maxDelay)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			var page struct {
				ID  string `json:"id"`
				URL string `json:"url"`
			}
			if err := json.Unmarshal(respBody, &page); err != nil {
				return nil, fmt.Errorf("parsing notion response: %w", err)
			}
			return &NotionPage{PageID: page.ID, URL: page.URL}, nil
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, retryDelay(attempt+1, resp.Header.Get("Retry-After"), c.baseDelay, c.maxDelay)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return nil, fmt.Errorf("notion create page failed: status=%d message=%s", resp.StatusCode, notionErrorMessage(respBody))
	}
}

func notionCreatePageRequest(databaseID string, payload model.NotionPayload) map[string]any {
	richText := func(content string) []map[string]any {
		return []map[string]any{{"text": map[string]any{"content": content}}}
	}

	properties := map[string]any{
		"Name": map[string]any{"title": richText(payload.Title)},
	}
	if payload.Summary != "" {
		properties["Summary"] = map[string]any{"rich_text": richText(payload.Summary)}
	}
	if payload.Source != "" {
		properties["Source"] = map[string]any{"rich_text": richText(payload.Source)}
	}

	return map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
}

func notionErrorMessage(body []byte) string {
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && strings.TrimSpace(parsed.Message) != "" {
		if parsed.Code != "" {
			return parsed.Code + ": " + parsed.Message
		}
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}
