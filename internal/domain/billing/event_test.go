package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name: "valid with actor",
			event: Event{
				ID:      "evt_1",
				Type:    EventPaymentFailed,
				ActorID: 42,
			},
		},
		{
			name: "valid with external subscription reference",
			event: Event{
				ID:                     "evt_2",
				Type:                   EventSubscriptionUpdated,
				ExternalSubscriptionID: "ext_sub_9",
			},
		},
		{
			name:    "missing id",
			event:   Event{Type: EventPaymentFailed, ActorID: 42},
			wantErr: true,
		},
		{
			name:    "missing type",
			event:   Event{ID: "evt_3", ActorID: 42},
			wantErr: true,
		},
		{
			name:    "no actor and no external reference",
			event:   Event{ID: "evt_4", Type: EventPaymentFailed},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMapExternalStatus(t *testing.T) {
	tests := []struct {
		external string
		want     vo.Status
		known    bool
	}{
		{"trialing", vo.StatusTrialing, true},
		{"incomplete", vo.StatusTrialing, true},
		{"active", vo.StatusActive, true},
		{"past_due", vo.StatusPastDue, true},
		{"unpaid", vo.StatusUnpaid, true},
		{"canceled", vo.StatusCanceled, true},
		{"cancelled", vo.StatusCanceled, true},
		{"incomplete_expired", vo.StatusCanceled, true},
		{"paused", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.external, func(t *testing.T) {
			got, known := MapExternalStatus(tt.external)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapExternalTier(t *testing.T) {
	tier, ok := MapExternalTier("pro")
	assert.True(t, ok)
	assert.Equal(t, vo.TierPro, tier)

	_, ok = MapExternalTier("platinum")
	assert.False(t, ok)
}

func TestEventType_IsKnown(t *testing.T) {
	assert.True(t, EventSubscriptionCreated.IsKnown())
	assert.True(t, EventPaymentSucceeded.IsKnown())
	assert.False(t, EventType("charge.refunded").IsKnown())
}

func TestEventCarriesPeriod(t *testing.T) {
	start := time.Now().UTC()
	end := start.Add(30 * 24 * time.Hour)
	e := Event{
		ID:          "evt_p",
		Type:        EventSubscriptionUpdated,
		ActorID:     1,
		PeriodStart: &start,
		PeriodEnd:   &end,
	}
	assert.NoError(t, e.Validate())
	assert.True(t, e.PeriodEnd.After(*e.PeriodStart))
}
