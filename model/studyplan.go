package model

import "time"

const (
	PlanUnsaved = "unsaved"
	PlanSaved   = "saved"
)

// SavedStudyPlan is a generated plan the student chose to keep.
type SavedStudyPlan struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   int64     `gorm:"index;not null" json:"student"`
	Student     *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlanContent string    `gorm:"type:text" json:"plan_content"`
	Status      string    `gorm:"size:10;not null;default:unsaved" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DashboardModule is a dashboard tile; inactive modules are "available" to
// be switched back on.
type DashboardModule struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID        int64           `gorm:"index;not null" json:"student"`
	Student          *Student        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title            string          `gorm:"size:200;not null" json:"title"`
	SavedStudyPlanID *int64          `json:"-"`
	SavedStudyPlan   *SavedStudyPlan `gorm:"constraint:OnDelete:SET NULL" json:"saved_study_plan"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Lesson belongs to a dashboard module.
type Lesson struct {
	ID                int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	DashboardModuleID int64            `gorm:"index;not null" json:"dashboard_module"`
	DashboardModule   *DashboardModule `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title             string           `gorm:"size:200;not null" json:"title"`
	Description       string           `gorm:"type:text" json:"description"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}
