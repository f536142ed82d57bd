package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CIV is a constructible unit identified by a sequential number.
// Its identity is immutable once activities reference it.
type CIV struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Number      string    `gorm:"size:64;not null" json:"number"`
	Description string    `gorm:"size:512" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DailyActivity records one measured unit of work against a CIV.
// Volumes are derived on write, never on read.
type DailyActivity struct {
	ID             string  `gorm:"type:char(36);primaryKey" json:"id"`
	CIVID          string  `gorm:"type:char(36);not null;index" json:"civId"`
	CIV            *CIV    `gorm:"foreignKey:CIVID" json:"civ,omitempty"`
	Activity       string  `gorm:"size:512;not null" json:"activity"`
	StartLocation  string  `gorm:"size:255" json:"startLocation"`
	EndLocation    string  `gorm:"size:255" json:"endLocation"`
	Item           string  `gorm:"size:255" json:"item"`
	Length         float64 `json:"length"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	GrossVolume    float64 `json:"grossVolume"`
	DiscountLength float64 `json:"discountLength"`
	DiscountWidth  float64 `json:"discountWidth"`
	DiscountHeight float64 `json:"discountHeight"`
	DiscountVolume float64 `json:"discountVolume"`
	NetVolume      float64 `json:"netVolume"`
	Photo          string  `gorm:"size:512" json:"photo"`
	Notes          string  `gorm:"size:2048" json:"notes"`

	// ReportGenerated flips once the activity has been folded into a report
	ReportGenerated bool `gorm:"default:false" json:"reportGenerated"`

	CreatedByID string `gorm:"type:char(36);not null;index" json:"createdById"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	// RoleLabel is the creator's comma-joined role names captured at
	// create time. A snapshot: later role edits do not rewrite it.
	RoleLabel string `gorm:"size:512" json:"roleLabel"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CIV) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (a *DailyActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for CIV
func (CIV) TableName() string {
	return "civs"
}

// TableName overrides the table name for DailyActivity
func (DailyActivity) TableName() string {
	return "daily_activities"
}
