package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is Expo's public push gateway.
const DefaultEndpoint = "https://exp.host/--/api/v2/push/send"

// Config customises the push client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client delivers push messages through the Expo gateway.
type Client struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
}

type message struct {
	To    string                 `json:"to"`
	Sound string                 `json:"sound"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type pushResponse struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// New constructs an Expo push client.
func New(cfg Config, logger zerolog.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "expo").Logger(),
	}
}

// Send delivers a single push message to the given device token.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]interface{}) error {
	payload, err := json.Marshal(message{
		To:    token,
		Sound: "default",
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push gateway returned status %d", response.StatusCode)
	}

	var decoded pushResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err == nil && len(decoded.Errors) > 0 {
		return fmt.Errorf("push gateway rejected message: %s", decoded.Errors[0].Message)
	}

	c.logger.Debug().Str("title", title).Msg("push message delivered")

	return nil
}
