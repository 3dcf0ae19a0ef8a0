// Package twilio sends WhatsApp messages through Twilio's REST API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
)

const (
	apiURL         = "https://api.twilio.com/2010-04-01"
	whatsappPrefix = "whatsapp:"
	timeout        = 10 * time.Second
)

type Config struct {
	AccountSID string
	AuthToken  string
	// FromNumber is the WhatsApp sender, with or without the whatsapp: prefix.
	FromNumber string
}

type Client struct {
	accountSID string
	authToken  string
	from       string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	HTTPClient *http.Client
	APIURL     string
}

// New validates cfg and returns a client. Every field of cfg is required.
func New(cfg Config, log *zap.Logger, m *metrics.Metrics) (*Client, error) {
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	cfg.FromNumber = strings.TrimSpace(cfg.FromNumber)
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil, ErrIncompleteConfig
	}

	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       WhatsAppAddress(cfg.FromNumber),
		logger:     logger.OrNop(log).Named("twilio"),
		metrics:    m,
		HTTPClient: &http.Client{Timeout: timeout},
		APIURL:     apiURL,
	}, nil
}

// WhatsAppAddress adds the whatsapp: scheme to a phone number when missing.
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/Accounts/%s/Messages.json", c.APIURL, url.PathEscape(c.accountSID))
}

func (c *Client) messageURL(sid string) string {
	return fmt.Sprintf("%s/Accounts/%s/Messages/%s.json", c.APIURL, url.PathEscape(c.accountSID), url.PathEscape(sid))
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.request(req)
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	return c.request(req)
}

func (c *Client) request(req *http.Request) (int, []byte, error) {
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

// apiError decodes a Twilio error body. Bodies without a message get
// "Unknown error".
func apiError(status int, body []byte) *APIError {
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = "Unknown error"
	}
	return &APIError{StatusCode: status, Code: payload.Code, Message: message}
}
