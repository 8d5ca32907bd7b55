package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for
// subscription records. This is the anti-corruption layer between domain and
// database.
type SubscriptionModel struct {
	ID                     uint   `gorm:"primarykey"`
	SID                    string `gorm:"uniqueIndex;not null;size:50;comment:public ID: sub_xxx"`
	ActorID                uint   `gorm:"uniqueIndex;not null"`
	Tier                   string `gorm:"not null;size:20;index:idx_tier"`
	ExternalCustomerID     *string `gorm:"size:100;index:idx_external_customer"`
	ExternalSubscriptionID *string `gorm:"size:100;uniqueIndex:uk_external_subscription"`
	Status                 string  `gorm:"not null;size:20;index:idx_status"`
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time `gorm:"index:idx_period_end"`
	CancelAtPeriodEnd      bool       `gorm:"not null;default:false;index:idx_cancel_at_period_end"`
	TrialEndsAt            *time.Time `gorm:"index:idx_trial_ends_at"`
	TrialWarningNotifiedAt *time.Time
	APIRequestsUsed        int `gorm:"not null;default:0"`
	APIRequestsLimit       int `gorm:"not null;default:0"`
	Version                int `gorm:"not null;default:1"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}

// SubscriptionHistoryModel is the append-only audit trail of subscription
// changes. Rows are never updated or deleted.
type SubscriptionHistoryModel struct {
	ID              uint    `gorm:"primarykey"`
	ActorID         uint    `gorm:"not null;index:idx_history_actor"`
	OldTier         string  `gorm:"not null;size:20"`
	NewTier         string  `gorm:"not null;size:20"`
	Reason          string  `gorm:"not null;size:500"`
	ChangedBy       string  `gorm:"not null;size:20"`
	ExternalEventID *string `gorm:"size:100;index:idx_history_event"`
	CreatedAt       time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionHistoryModel) TableName() string {
	return constants.TableSubscriptionHistory
}
