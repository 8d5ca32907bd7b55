// Package billing adapts the external billing provider's webhook wire format
// to the domain event model.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	domainbilling "github.com/girder-hq/girder/internal/domain/billing"
)

// webhookPayload is the provider's wire format. Timestamps are unix seconds.
type webhookPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		ActorID           uint   `json:"actor_id"`
		CustomerID        string `json:"customer_id"`
		SubscriptionID    string `json:"subscription_id"`
		Status            string `json:"status"`
		Plan              string `json:"plan"`
		PeriodStart       int64  `json:"period_start"`
		PeriodEnd         int64  `json:"period_end"`
		CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
		TrialEndsAt       int64  `json:"trial_ends_at"`
		InvoiceID         string `json:"invoice_id"`
	} `json:"data"`
}

// WebhookGateway verifies and decodes billing provider webhooks.
type WebhookGateway struct {
	secret []byte
}

func NewWebhookGateway(secret string) *WebhookGateway {
	return &WebhookGateway{secret: []byte(secret)}
}

// VerifySignature checks the hex-encoded HMAC-SHA256 signature over the raw
// request body. Comparison is constant time.
func (g *WebhookGateway) VerifySignature(payload []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed webhook signature")
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

// Sign computes the signature for a payload. Used by tests and outbound
// tooling.
func (g *WebhookGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent decodes a verified payload into a domain event.
func (g *WebhookGateway) ParseEvent(payload []byte) (*domainbilling.Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	event := &domainbilling.Event{
		ID:                     p.ID,
		Type:                   domainbilling.EventType(p.Type),
		ActorID:                p.Data.ActorID,
		ExternalCustomerID:     p.Data.CustomerID,
		ExternalSubscriptionID: p.Data.SubscriptionID,
		Status:                 p.Data.Status,
		Tier:                   p.Data.Plan,
		CancelAtPeriodEnd:      p.Data.CancelAtPeriodEnd,
		InvoiceID:              p.Data.InvoiceID,
		OccurredAt:             unixTime(p.Created),
	}
	if p.Data.PeriodStart > 0 {
		start := unixTime(p.Data.PeriodStart)
		event.PeriodStart = &start
	}
	if p.Data.PeriodEnd > 0 {
		end := unixTime(p.Data.PeriodEnd)
		event.PeriodEnd = &end
	}
	if p.Data.TrialEndsAt > 0 {
		trialEnd := unixTime(p.Data.TrialEndsAt)
		event.TrialEndsAt = &trialEnd
	}

	return event, nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
