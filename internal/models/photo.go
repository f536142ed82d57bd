package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is an independently persisted image record, in addition to the
// photo path embedded on an activity. The two are never reconciled.
type Photo struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CIVID     string    `gorm:"type:char(36);not null;index" json:"civId"`
	CIV       *CIV      `gorm:"foreignKey:CIVID" json:"civ,omitempty"`
	ReportID  string    `gorm:"type:char(36)" json:"reportId,omitempty"`
	Photo     string    `gorm:"size:512;not null" json:"photo"`
	Date      time.Time `gorm:"not null" json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Photo
func (Photo) TableName() string {
	return "photos"
}
