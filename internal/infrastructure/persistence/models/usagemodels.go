package models

import (
	"time"

	"github.com/girder-hq/girder/internal/shared/constants"
)

// SandboxRunModel records a single sandbox execution. Usage snapshots count
// rows created in the current UTC day; rows are write-once.
type SandboxRunModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"uniqueIndex;not null;size:50;comment:public ID: run_xxx"`
	ActorID   uint   `gorm:"not null;index:idx_run_actor_created,priority:1"`
	ModuleID  *uint  `gorm:"index:idx_run_module"`
	Status    string `gorm:"not null;size:20;default:completed"`
	CreatedAt time.Time `gorm:"index:idx_run_actor_created,priority:2"`
}

// TableName specifies the table name for GORM
func (SandboxRunModel) TableName() string {
	return constants.TableSandboxRuns
}

// AppModel is the minimal projection of a tenant app the governance core
// needs: ownership plus an active flag for quota counting. The app catalog
// itself lives in another service.
type AppModel struct {
	ID        uint   `gorm:"primarykey"`
	ActorID   uint   `gorm:"not null;index:idx_app_actor_active,priority:1"`
	Name      string `gorm:"not null;size:200"`
	Active    bool   `gorm:"not null;default:true;index:idx_app_actor_active,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (AppModel) TableName() string {
	return constants.TableApps
}

// WorkflowModel is the minimal projection of a workflow for quota counting.
type WorkflowModel struct {
	ID        uint   `gorm:"primarykey"`
	ActorID   uint   `gorm:"not null;index:idx_workflow_actor_active,priority:1"`
	AppID     *uint  `gorm:"index:idx_workflow_app"`
	Name      string `gorm:"not null;size:200"`
	Active    bool   `gorm:"not null;default:true;index:idx_workflow_actor_active,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (WorkflowModel) TableName() string {
	return constants.TableWorkflows
}
