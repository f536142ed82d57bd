package services

import (
	"log"
	"time"

	"github.com/projectsoft/obras-api/internal/models"
	"gorm.io/gorm"
)

// Notification status labels attached to workflow transitions
const (
	NotificationApproved    = "approved"
	NotificationRejected    = "rejected"
	NotificationResubmitted = "resubmitted"
)

// EmitNotification creates one unread notification for a user. Failures
// are logged and swallowed: notifications are an audit trail, never part
// of the transition's transactional boundary.
func EmitNotification(db *gorm.DB, status, userID, text string) {
	notification := models.Notification{
		Status:  status,
		UserID:  userID,
		Message: text,
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("Error creating notification: %v", err)
	}
}

// EmitReportMessage creates one message correlated to a report. Failures
// are logged and swallowed, independently of notification creation.
func EmitReportMessage(db *gorm.DB, reportID, senderID, recipientID, subject, body string) {
	message := models.Message{
		ReportID:    reportID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		ScheduledAt: time.Now(),
	}
	if err := db.Create(&message).Error; err != nil {
		log.Printf("Error creating message: %v", err)
	}
}
