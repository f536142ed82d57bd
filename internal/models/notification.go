package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an audit-trail record created as a side effect of a
// workflow transition. Never deleted by the workflow; only bulk-marked
// read per user.
type Notification struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Status    string    `gorm:"size:64;not null" json:"status"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Message   string    `gorm:"size:1024;not null" json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a workflow-correlated note between two users about a report
type Message struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	ReportID    string    `gorm:"type:char(36);index" json:"reportId"`
	SenderID    string    `gorm:"type:char(36);not null" json:"senderId"`
	Sender      *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID string    `gorm:"type:char(36);not null" json:"recipientId"`
	Recipient   *User     `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Subject     string    `gorm:"size:255;not null" json:"subject"`
	Body        string    `gorm:"size:2048;not null" json:"body"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Document    string    `gorm:"size:512;default:''" json:"document"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}
