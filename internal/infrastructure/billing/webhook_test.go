package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainbilling "github.com/girder-hq/girder/internal/domain/billing"
)

func TestWebhookGateway_VerifySignature(t *testing.T) {
	gateway := NewWebhookGateway("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed"}`)

	assert.NoError(t, gateway.VerifySignature(payload, gateway.Sign(payload)))
}

func TestWebhookGateway_RejectsTamperedPayload(t *testing.T) {
	gateway := NewWebhookGateway("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	signature := gateway.Sign(payload)

	assert.Error(t, gateway.VerifySignature([]byte(`{"id":"evt_2"}`), signature))
}

func TestWebhookGateway_RejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	signature := NewWebhookGateway("whsec_other").Sign(payload)

	assert.Error(t, NewWebhookGateway("whsec_test").VerifySignature(payload, signature))
}

func TestWebhookGateway_RejectsMissingOrMalformedSignature(t *testing.T) {
	gateway := NewWebhookGateway("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)

	assert.Error(t, gateway.VerifySignature(payload, ""))
	assert.Error(t, gateway.VerifySignature(payload, "not-hex!"))
}

func TestWebhookGateway_ParseEvent(t *testing.T) {
	gateway := NewWebhookGateway("whsec_test")
	payload := []byte(`{
		"id": "evt_42",
		"type": "subscription.updated",
		"created": 1756300000,
		"data": {
			"actor_id": 7,
			"customer_id": "cus_1",
			"subscription_id": "ext_sub_1",
			"status": "active",
			"plan": "pro",
			"period_start": 1756000000,
			"period_end": 1758600000,
			"cancel_at_period_end": true,
			"invoice_id": "inv_3"
		}
	}`)

	event, err := gateway.ParseEvent(payload)

	assert.NoError(t, err)
	assert.Equal(t, "evt_42", event.ID)
	assert.Equal(t, domainbilling.EventSubscriptionUpdated, event.Type)
	assert.Equal(t, uint(7), event.ActorID)
	assert.Equal(t, "ext_sub_1", event.ExternalSubscriptionID)
	assert.Equal(t, "pro", event.Tier)
	assert.True(t, event.CancelAtPeriodEnd)
	assert.NotNil(t, event.PeriodStart)
	assert.Equal(t, time.Unix(1756000000, 0).UTC(), *event.PeriodStart)
	assert.Nil(t, event.TrialEndsAt)
	assert.NoError(t, event.Validate())
}

func TestWebhookGateway_ParseEventRejectsInvalidJSON(t *testing.T) {
	gateway := NewWebhookGateway("whsec_test")

	event, err := gateway.ParseEvent([]byte("{not json"))

	assert.Error(t, err)
	assert.Nil(t, event)
}
