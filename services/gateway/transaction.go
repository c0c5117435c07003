package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"skillchain/logger"
)

// Transaction statuses reported by the processor
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusReversed  = "reversed"
	StatusOngoing   = "ongoing"
	StatusPending   = "pending"
)

// TransactionResult is the transaction object returned by verify and carried by webhooks.
type TransactionResult struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"` // minor units
	Currency  string          `json:"currency"`
	Channel   string          `json:"channel"`
	PaidAt    *time.Time      `json:"paid_at"`
	Metadata  json.RawMessage `json:"metadata"`
	Customer  Customer        `json:"customer"`
	Split     json.RawMessage `json:"split,omitempty"`
}

type Customer struct {
	Email string `json:"email"`
}

// Succeeded reports whether the charge went through.
func (t TransactionResult) Succeeded() bool {
	return t.Status == StatusSuccess
}

// AmountMajor converts the minor-unit amount to major units.
func (t TransactionResult) AmountMajor() float64 {
	return float64(t.Amount) / 100
}

// ChargeMetadata is what we attach to every transaction at initialization
type ChargeMetadata struct {
	CourseID      string  `json:"courseId"`
	UserID        string  `json:"userId"`
	InstructorID  string  `json:"instructorId"`
	CourseTitle   string  `json:"courseTitle,omitempty"`
	PlatformFee   float64 `json:"platformFee"`
	CreatorAmount float64 `json:"creatorAmount"`
}

// ChargeMetadata decodes our metadata from the transaction. The processor
// sometimes echoes metadata back as a JSON-encoded string; both forms are accepted.
// Decode failures are logged and whatever fields decoded are returned.
func (t TransactionResult) ChargeMetadata() ChargeMetadata {
	var meta ChargeMetadata
	raw := bytes.TrimSpace(t.Metadata)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return meta
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			t.logBadMetadata(err)
			return meta
		}
		raw = bytes.TrimSpace([]byte(s))
		if len(raw) == 0 {
			return meta
		}
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.logBadMetadata(err)
	}
	return meta
}

func (t TransactionResult) logBadMetadata(err error) {
	log := logger.For("gateway")
	log.Warn().Err(err).Str("reference", t.Reference).Msg("undecodable charge metadata")
}

// ToMinor converts a major-unit amount to minor units, rounding to the nearest unit.
func ToMinor(amount float64) int64 {
	if amount < 0 {
		return -int64(-amount*100 + 0.5)
	}
	return int64(amount*100 + 0.5)
}
