package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type SendResult struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// SendMessage sends body to the given number. mediaURL is optional.
func (c *Client) SendMessage(ctx context.Context, to, body, mediaURL string) (*SendResult, error) {
	form := url.Values{}
	form.Set("To", WhatsAppAddress(to))
	form.Set("From", c.from)
	form.Set("Body", body)
	if strings.TrimSpace(mediaURL) != "" {
		form.Set("MediaUrl", mediaURL)
	}

	c.logger.Info("sending whatsapp message", zap.String("to", form.Get("To")))

	status, data, err := c.postForm(ctx, c.messagesURL(), form)
	if err != nil {
		c.metrics.MessageSent(false)
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if status != http.StatusOK && status != http.StatusCreated {
		c.metrics.MessageSent(false)
		apiErr := apiError(status, data)
		c.logger.Error("twilio api error", zap.Int("status", status), zap.Int("code", apiErr.Code), zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	var resp struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.metrics.MessageSent(false)
		return nil, fmt.Errorf("decode twilio response: %w", err)
	}

	c.metrics.MessageSent(true)
	return &SendResult{SID: resp.SID, Status: resp.Status, To: to}, nil
}

type MessageStatus struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	DateSent     string `json:"date_sent"`
}

// MessageStatus fetches the delivery status of a sent message.
func (c *Client) MessageStatus(ctx context.Context, sid string) (*MessageStatus, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, fmt.Errorf("message sid is required")
	}

	status, data, err := c.get(ctx, c.messageURL(sid))
	if err != nil {
		return nil, fmt.Errorf("get message status: %w", err)
	}
	if status != http.StatusOK {
		return nil, apiError(status, data)
	}

	var ms MessageStatus
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("decode message status: %w", err)
	}
	return &ms, nil
}

type Message struct {
	To       string `json:"to"`
	Body     string `json:"message"`
	MediaURL string `json:"media_url,omitempty"`
}

type BulkResult struct {
	To     string
	Result *SendResult
	Err    error
}

// SendBulk sends messages one after another. A failed message does not stop
// the rest; its error is recorded in the matching result.
func (c *Client) SendBulk(ctx context.Context, messages []Message) []BulkResult {
	results := make([]BulkResult, 0, len(messages))
	for _, m := range messages {
		res, err := c.SendMessage(ctx, m.To, m.Body, m.MediaURL)
		results = append(results, BulkResult{To: m.To, Result: res, Err: err})
	}
	return results
}
