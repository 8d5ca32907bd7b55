package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/girder-hq/girder/internal/shared/constants"
)

// NotificationModel represents the database persistence model for
// governance notifications.
type NotificationModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"uniqueIndex;not null;size:50;comment:public ID: ntf_xxx"`
	ActorID   uint   `gorm:"not null;index:idx_notification_actor"`
	Type      string `gorm:"not null;size:50;index:idx_notification_type"`
	Title     string `gorm:"not null;size:200"`
	Message   string `gorm:"not null;size:2000"`
	Data      datatypes.JSON
	ReadAt    *time.Time `gorm:"index:idx_notification_read"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (NotificationModel) TableName() string {
	return constants.TableNotifications
}
