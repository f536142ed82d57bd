package services

import (
	"time"

	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

// PhotoEntry is one photograph in the month view
type PhotoEntry struct {
	ID    string      `json:"id"`
	Date  time.Time   `json:"date"`
	Photo string      `json:"photo"`
	CIV   *models.CIV `json:"civ,omitempty"`
}

// UploadPhoto persists an independent photo record for a CIV
func UploadPhoto(db *gorm.DB, civID, reportID, photo string) (*models.Photo, error) {
	if photo == "" {
		return nil, types.Validation("No image provided")
	}

	record := models.Photo{
		CIVID:    civID,
		ReportID: reportID,
		Photo:    photo,
		Date:     time.Now(),
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// PhotosByCIV collects the activity photographs for one CIV across the
// reports created in a given month, grouped by report creation date.
func PhotosByCIV(db *gorm.DB, civID string, month, year int) (map[string][]PhotoEntry, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var reports []models.DailyReport
	err := db.Preload("Activities").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	// Map each referenced activity back to its report's creation date
	activityDates := make(map[string]time.Time)
	activityIDs := make([]string, 0)
	for _, report := range reports {
		for _, activity := range report.Activities {
			activityDates[activity.ID] = report.CreatedAt
			activityIDs = append(activityIDs, activity.ID)
		}
	}

	grouped := make(map[string][]PhotoEntry)
	if len(activityIDs) == 0 {
		return grouped, nil
	}

	var activities []models.DailyActivity
	err = db.Preload("CIV").
		Where("civ_id = ? AND id IN ?", civID, activityIDs).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	for _, activity := range activities {
		if activity.Photo == "" {
			continue
		}
		date := activityDates[activity.ID]
		key := date.Format("2006-01-02")
		grouped[key] = append(grouped[key], PhotoEntry{
			ID:    activity.ID,
			Date:  date,
			Photo: activity.Photo,
			CIV:   activity.CIV,
		})
	}

	return grouped, nil
}
