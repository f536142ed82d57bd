package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportInput carries the fields a creator submits for a new report
type ReportInput struct {
	Date       time.Time
	Summary    string
	Activities []string
	Comments   datatypes.JSON
}

// ReportUpdate carries an update. Nil fields are left alone: only what
// the client sent is merged onto the stored report.
type ReportUpdate struct {
	Date       *time.Time
	Summary    *string
	Status     *string
	Activities *[]string
	Comments   datatypes.JSON
}

// CreateReport creates a report in the pending state for the actor.
// Any status in the request body is ignored: reports always start pending.
func CreateReport(db *gorm.DB, input ReportInput, actor *models.User) (*models.DailyReport, error) {
	activities, err := resolveActivities(db, input.Activities)
	if err != nil {
		return nil, err
	}

	report := models.DailyReport{
		Date:        input.Date,
		Summary:     input.Summary,
		Activities:  activities,
		Status:      models.StatusPending,
		CreatedByID: actor.ID,
		Comments:    input.Comments,
	}
	if err := db.Create(&report).Error; err != nil {
		return nil, err
	}

	return GetReport(db, report.ID, false)
}

// ListReports returns all reports. Eager loading of activities and the
// creator/approver is explicit so callers see its cost.
func ListReports(db *gorm.DB, preload bool) ([]models.DailyReport, error) {
	query := db.Order("date DESC")
	if preload {
		query = query.Preload("Activities").Preload("Activities.CIV").
			Preload("CreatedBy").Preload("ApprovedBy")
	}
	var reports []models.DailyReport
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport returns one report by id, optionally with its related rows.
func GetReport(db *gorm.DB, id string, preload bool) (*models.DailyReport, error) {
	query := db
	if preload {
		query = query.Preload("Activities").Preload("Activities.CIV").
			Preload("CreatedBy").Preload("ApprovedBy")
	}
	var report models.DailyReport
	if err := query.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Report not found")
		}
		return nil, err
	}
	return &report, nil
}

// UpdateReport applies a full-replace update. When a rejected report
// comes back with status explicitly set to pending this is a
// resubmission: the prior approver gets one notification and one message.
// Any other field-only edit emits nothing.
func UpdateReport(db *gorm.DB, id string, update ReportUpdate) (*models.DailyReport, error) {
	report, err := GetReport(db, id, false)
	if err != nil {
		return nil, err
	}

	resubmission := report.Status == models.StatusRejected &&
		update.Status != nil && *update.Status == models.StatusPending

	if update.Date != nil {
		report.Date = *update.Date
	}
	if update.Summary != nil {
		report.Summary = *update.Summary
	}
	if update.Status != nil {
		report.Status = *update.Status
	}
	if update.Comments != nil {
		report.Comments = update.Comments
	}
	if resubmission {
		report.RejectionReason = ""
	}

	if err := db.Save(report).Error; err != nil {
		return nil, err
	}

	if update.Activities != nil {
		activities, err := resolveActivities(db, *update.Activities)
		if err != nil {
			return nil, err
		}
		if err := db.Model(report).Association("Activities").Replace(activities); err != nil {
			return nil, err
		}
	}

	// Side effects run only after the state change is committed
	if resubmission && report.ApprovedByID != nil {
		text := fmt.Sprintf("The report of %s has been updated and is pending review.",
			report.Date.Format("2006-01-02"))
		EmitNotification(db, NotificationResubmitted, *report.ApprovedByID, text)
		EmitReportMessage(db, report.ID, report.CreatedByID, *report.ApprovedByID,
			"Report updated", text)
	}

	return GetReport(db, report.ID, true)
}

// ApproveReport moves a pending report to the approved terminal state.
func ApproveReport(db *gorm.DB, id string, actor *models.User) (*models.DailyReport, error) {
	report, err := GetReport(db, id, false)
	if err != nil {
		return nil, err
	}

	switch report.Status {
	case models.StatusApproved:
		return nil, types.InvalidTransition("Report is already approved")
	case models.StatusRejected:
		return nil, types.InvalidTransition("Report is already rejected")
	}

	now := time.Now()
	// Conditional write keyed on the expected prior status. A concurrent
	// terminal transition that got there first leaves zero rows affected.
	result := db.Model(&models.DailyReport{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":         models.StatusApproved,
			"approved_by_id": actor.ID,
			"approved_at":    now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, types.Conflict("Report was processed concurrently")
	}

	text := fmt.Sprintf("The report of %s has been approved", report.Date.Format("2006-01-02"))
	EmitNotification(db, NotificationApproved, report.CreatedByID, text)

	return GetReport(db, id, true)
}

// RejectReport moves a pending report to rejected with a required reason.
func RejectReport(db *gorm.DB, id, rejectionReason string, actor *models.User) (*models.DailyReport, error) {
	reason := strings.TrimSpace(rejectionReason)
	if reason == "" {
		return nil, types.Validation("Rejection reason is required")
	}

	report, err := GetReport(db, id, false)
	if err != nil {
		return nil, err
	}

	if report.Status == models.StatusApproved || report.Status == models.StatusRejected {
		return nil, types.InvalidTransition("Report has already been processed")
	}

	now := time.Now()
	result := db.Model(&models.DailyReport{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":           models.StatusRejected,
			"approved_by_id":   actor.ID,
			"approved_at":      now,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, types.Conflict("Report was processed concurrently")
	}

	// Both side effects are best effort and independently isolated
	text := fmt.Sprintf("The report of %s has been rejected. Reason: %s",
		report.Date.Format("2006-01-02"), reason)
	EmitNotification(db, NotificationRejected, report.CreatedByID, text)
	EmitReportMessage(db, report.ID, actor.ID, report.CreatedByID,
		"Daily report rejected", text)

	return GetReport(db, id, true)
}

// DeleteReport removes a report, permitted only while it is pending.
func DeleteReport(db *gorm.DB, id string) error {
	report, err := GetReport(db, id, false)
	if err != nil {
		return err
	}

	if report.Status != models.StatusPending {
		return types.InvalidTransition("Cannot delete a report that has been approved or rejected")
	}

	result := db.Where("id = ? AND status = ?", id, models.StatusPending).
		Delete(&models.DailyReport{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.Conflict("Report was processed concurrently")
	}

	// Delete does not cascade to the join table
	if err := db.Model(&models.DailyReport{ID: id}).Association("Activities").Clear(); err != nil {
		return err
	}
	return nil
}

// resolveActivities loads the referenced activities, tolerating an empty list
func resolveActivities(db *gorm.DB, ids []string) ([]models.DailyActivity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var activities []models.DailyActivity
	if err := db.Find(&activities, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
