package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// Signature computes the X-Twilio-Signature of a webhook request: HMAC-SHA1
// over the full URL followed by every POST parameter name and value, sorted
// by name.
func Signature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature reports whether signature was produced by Twilio for the
// given request.
func ValidateSignature(authToken, url string, params map[string]string, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}
	expected := Signature(authToken, url, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ValidateSignature checks a webhook signature with the client's auth token.
func (c *Client) ValidateSignature(url string, params map[string]string, signature string) bool {
	return ValidateSignature(c.authToken, url, params, signature)
}
