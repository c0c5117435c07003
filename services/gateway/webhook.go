package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"skillchain/apperrors"
)

// EventChargeSuccess is the only event the platform acts on.
const EventChargeSuccess = "charge.success"

// Event is a webhook delivery from the processor
type Event struct {
	Event string            `json:"event"`
	Data  TransactionResult `json:"data"`
}

// IsChargeSuccess reports whether the event should be recorded.
func (e Event) IsChargeSuccess() bool {
	return e.Event == EventChargeSuccess
}

// Sign returns the hex HMAC-SHA512 of body keyed by secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the raw body in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" || secret == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseWebhook authenticates rawBody and decodes it. The signature must be
// checked against the exact bytes received, before any decoding.
func (c *Client) ParseWebhook(rawBody []byte, signature string) (*Event, error) {
	return ParseWebhook(c.secret, rawBody, signature)
}

func ParseWebhook(secret string, rawBody []byte, signature string) (*Event, error) {
	if !VerifySignature(secret, rawBody, signature) {
		return nil, apperrors.ErrInvalidSignature
	}
	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &event, nil
}
