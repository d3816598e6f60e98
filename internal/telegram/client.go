// Package telegram предоставляет клиент Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultAPIURL — адрес продакшен-сервера Bot API.
const DefaultAPIURL = "https://api.telegram.org"

// Client инкапсулирует HTTP-взаимодействие с Telegram Bot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент Bot API для указанного адреса сервера и токена бота.
func NewClient(apiURL, botToken string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 35 * time.Second // больше, чем timeout long-polling
	rc.Logger = nil

	return &Client{
		baseURL:    apiURL + "/bot" + botToken,
		httpClient: rc.StandardClient(),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := c.baseURL + "/" + method

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !apiResp.OK {
		return fmt.Errorf("%s: telegram error %d: %s", method, resp.StatusCode, apiResp.Description)
	}

	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}

	return nil
}

// GetMe возвращает данные самого бота, в частности username для ссылок.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates выполняет long-polling запрос обновлений начиная с offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{Offset: offset, Timeout: timeout}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage отправляет сообщение пользователю.
func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) error {
	return c.call(ctx, "sendMessage", msg, nil)
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// AnswerCallbackQuery подтверждает обработку нажатия inline-кнопки.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID}, nil)
}
