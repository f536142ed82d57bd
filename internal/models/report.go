package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report lifecycle states
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ReportComment is one threaded comment on a report, persisted inside
// the Comments JSON column.
type ReportComment struct {
	Text      string    `json:"text"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyReport is a dated bundle of activities submitted for approval.
// Status only moves through the workflow service; ApprovedBy/ApprovedAt
// are set exactly when the report reaches a terminal decision, and
// RejectionReason exactly when that decision is a rejection.
type DailyReport struct {
	ID         string          `gorm:"type:char(36);primaryKey" json:"id"`
	Date       time.Time       `gorm:"not null" json:"date"`
	Summary    string          `gorm:"size:2048;not null" json:"summary"`
	Activities []DailyActivity `gorm:"many2many:daily_report_activities" json:"activities"`
	Status     string          `gorm:"size:16;not null;default:pending;index" json:"status"`

	CreatedByID string `gorm:"type:char(36);not null;index" json:"createdById"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	ApprovedByID *string    `gorm:"type:char(36)" json:"approvedById,omitempty"`
	ApprovedBy   *User      `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`

	RejectionReason string `gorm:"size:2048" json:"rejectionReason,omitempty"`

	Comments datatypes.JSON `gorm:"type:json" json:"comments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *DailyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}

// TableName overrides the table name for DailyReport
func (DailyReport) TableName() string {
	return "daily_reports"
}
