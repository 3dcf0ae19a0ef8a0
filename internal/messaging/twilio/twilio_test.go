package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.New()
	c, err := New(Config{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+14155238886"}, nil, m)
	require.NoError(t, err)
	c.APIURL = server.URL
	c.HTTPClient = server.Client()
	return c, m
}

func TestNewRequiresEveryField(t *testing.T) {
	for _, cfg := range []Config{
		{AuthToken: "t", FromNumber: "+1"},
		{AccountSID: "AC", FromNumber: "+1"},
		{AccountSID: "AC", AuthToken: "t", FromNumber: "  "},
	} {
		_, err := New(cfg, nil, nil)
		assert.ErrorIs(t, err, ErrIncompleteConfig)
	}
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+212600000000", WhatsAppAddress("+212600000000"))
	assert.Equal(t, "whatsapp:+212600000000", WhatsAppAddress("whatsapp:+212600000000"))
}

func TestSendMessage(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+212600000000", r.PostForm.Get("To"))
		assert.Equal(t, "whatsapp:+14155238886", r.PostForm.Get("From"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))
		assert.Equal(t, "https://example.com/report.pdf", r.PostForm.Get("MediaUrl"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM1", "status": "queued"}`))
	})

	res, err := c.SendMessage(context.Background(), "+212600000000", "hello", "https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, &SendResult{SID: "SM1", Status: "queued", To: "+212600000000"}, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues(metrics.OutcomeOK)))
}

func TestSendMessageWithoutMedia(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		_, present := r.PostForm["MediaUrl"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"sid": "SM2", "status": "sent"}`))
	})

	res, err := c.SendMessage(context.Background(), "whatsapp:+1", "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "SM2", res.SID)
}

func TestSendMessageAPIError(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 21211, "message": "Invalid 'To' Phone Number"}`))
	})

	_, err := c.SendMessage(context.Background(), "+0", "hi", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 21211, apiErr.Code)
	assert.Equal(t, "Invalid 'To' Phone Number", apiErr.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues(metrics.OutcomeError)))
}

func TestSendMessageUnknownError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	})

	_, err := c.SendMessage(context.Background(), "+1", "hi", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Unknown error", apiErr.Message)
}

func TestMessageStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Accounts/AC123/Messages/SM1.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"sid": "SM1", "status": "undelivered", "error_code": 63016, "error_message": "Outside window", "date_sent": "Mon, 12 Oct 2026 10:00:00 +0000"}`))
	})

	status, err := c.MessageStatus(context.Background(), "SM1")
	require.NoError(t, err)
	assert.Equal(t, "undelivered", status.Status)
	require.NotNil(t, status.ErrorCode)
	assert.Equal(t, 63016, *status.ErrorCode)
	assert.Equal(t, "Outside window", status.ErrorMessage)

	_, err = c.MessageStatus(context.Background(), " ")
	assert.Error(t, err)
}

func TestSendBulkContinuesAfterFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("To") == "whatsapp:+bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": 21211, "message": "invalid"}`))
			return
		}
		_, _ = w.Write([]byte(`{"sid": "SM", "status": "queued"}`))
	})

	results := c.SendBulk(context.Background(), []Message{
		{To: "+bad", Body: "a"},
		{To: "+good", Body: "b"},
	})
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Nil(t, results[0].Result)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, "+good", results[1].Result.To)
}

func TestRenderNotification(t *testing.T) {
	body, err := RenderNotification(EvaluationSubmitted, map[string]any{"employee_name": "Amal", "score": 8.4})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Amal,")
	assert.Contains(t, body, "*Overall Score:* 8.4/10")

	_, err = RenderNotification(EvaluationApproved, map[string]any{"employee_name": "Amal"})
	assert.Error(t, err)

	body, err = RenderNotification("custom", map[string]any{"message": "Office closed Friday"})
	require.NoError(t, err)
	assert.Equal(t, "*Notification*\n\nOffice closed Friday", body)

	for _, kind := range NotificationKinds() {
		_, ok := notificationTemplates[kind]
		assert.True(t, ok, kind)
	}
}

func TestSendNotificationMissingKeyDoesNotSend(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := c.SendNotification(context.Background(), "+1", WeeklyCheckin, map[string]any{"student_name": "Omar"})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestFormatMenu(t *testing.T) {
	got := FormatMenu("Main menu", []string{"Check-in", "Help"})
	assert.Equal(t, "*Main menu*\n\n1. Check-in\n2. Help\n\nReply with the number of your choice.", got)
}

func TestValidateSignature(t *testing.T) {
	params := map[string]string{"From": "whatsapp:+1", "Body": "1", "MessageSid": "SM1"}
	url := "https://hr.example.com/whatsapp/webhook"

	signature := Signature("secret", url, params)
	assert.True(t, ValidateSignature("secret", url, params, signature))

	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	assert.True(t, c.ValidateSignature(url, params, signature))

	assert.False(t, ValidateSignature("other", url, params, signature))
	assert.False(t, ValidateSignature("secret", url+"?x=1", params, signature))
	params["Body"] = "2"
	assert.False(t, ValidateSignature("secret", url, params, signature))
	assert.False(t, ValidateSignature("secret", url, params, ""))
}

func TestSignatureMatchesTwilioDocumentedExample(t *testing.T) {
	params := map[string]string{
		"CallSid": "CA1234567890ABCDE",
		"Caller":  "+12349013030",
		"Digits":  "1234",
		"From":    "+12349013030",
		"To":      "+18005551212",
	}
	got := Signature("12345", "https://mycompany.com/myapp.php?foo=1&bar=2", params)
	assert.Equal(t, "0/KCTR6DLpKmkAf8muzZqo1nDgQ=", got)
}
