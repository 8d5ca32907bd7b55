package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		n, err := NewNotification(42, "ntf_abc", TypePaymentFailed, "Payment failed", "Your latest invoice could not be charged.", map[string]any{"invoice_id": "in_123"})
		require.NoError(t, err)

		assert.Equal(t, uint(42), n.ActorID())
		assert.Equal(t, TypePaymentFailed, n.Type())
		assert.False(t, n.IsRead())
		assert.Equal(t, "in_123", n.Data()["invoice_id"])
	})

	t.Run("validation errors", func(t *testing.T) {
		_, err := NewNotification(0, "ntf_x", TypeTrialEnding, "t", "m", nil)
		assert.Error(t, err)
		_, err = NewNotification(1, "ntf_x", Type("spam"), "t", "m", nil)
		assert.Error(t, err)
		_, err = NewNotification(1, "ntf_x", TypeTrialEnding, "", "m", nil)
		assert.Error(t, err)
		_, err = NewNotification(1, "ntf_x", TypeTrialEnding, "t", "", nil)
		assert.Error(t, err)
		_, err = NewNotification(1, "ntf_x", TypeTrialEnding, strings.Repeat("a", 201), "m", nil)
		assert.Error(t, err)
	})
}

func TestNotification_MarkRead(t *testing.T) {
	n, err := NewNotification(7, "ntf_read", TypeSubscriptionCanceled, "Subscription canceled", "Your subscription has ended.", nil)
	require.NoError(t, err)

	first := time.Now().UTC()
	n.MarkRead(first)
	assert.True(t, n.IsRead())
	assert.Equal(t, first, *n.ReadAt())

	// MarkRead is idempotent; the first read timestamp wins
	n.MarkRead(first.Add(time.Hour))
	assert.Equal(t, first, *n.ReadAt())
}

func TestNotification_DataIsCopied(t *testing.T) {
	n, err := NewNotification(7, "ntf_copy", TypeTrialEnding, "Trial ending", "2 days left.", map[string]any{"days_left": 2})
	require.NoError(t, err)

	data := n.Data()
	data["days_left"] = 99
	assert.Equal(t, 2, n.Data()["days_left"])
}
