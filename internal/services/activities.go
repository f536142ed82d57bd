package services

import (
	"errors"
	"strings"

	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

// ActivityInput carries the raw fields submitted for an activity.
// Volumes are always derived here, never accepted from the client.
type ActivityInput struct {
	CIVID          string
	Activity       string
	StartLocation  string
	EndLocation    string
	Item           string
	Length         float64
	Width          float64
	Height         float64
	DiscountLength float64
	DiscountWidth  float64
	DiscountHeight float64
	Photo          string
	Notes          string
}

// CreateActivity creates an activity for the actor, deriving volumes and
// snapshotting the actor's role names into the role label.
func CreateActivity(db *gorm.DB, input ActivityInput, actor *models.User) (*models.DailyActivity, error) {
	volumes := ComputeVolumes(input.Length, input.Width, input.Height,
		input.DiscountLength, input.DiscountWidth, input.DiscountHeight)

	activity := models.DailyActivity{
		CIVID:          input.CIVID,
		Activity:       input.Activity,
		StartLocation:  input.StartLocation,
		EndLocation:    input.EndLocation,
		Item:           input.Item,
		Length:         input.Length,
		Width:          input.Width,
		Height:         input.Height,
		GrossVolume:    volumes.Gross,
		DiscountLength: input.DiscountLength,
		DiscountWidth:  input.DiscountWidth,
		DiscountHeight: input.DiscountHeight,
		DiscountVolume: volumes.Discount,
		NetVolume:      volumes.Net,
		Photo:          input.Photo,
		Notes:          input.Notes,
		CreatedByID:    actor.ID,
		RoleLabel:      roleLabel(actor),
	}
	if err := db.Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity replaces every field of an activity and recomputes
// volumes, exactly as on create.
func UpdateActivity(db *gorm.DB, id string, input ActivityInput, actor *models.User) (*models.DailyActivity, error) {
	activity, err := GetActivity(db, id, false)
	if err != nil {
		return nil, err
	}

	volumes := ComputeVolumes(input.Length, input.Width, input.Height,
		input.DiscountLength, input.DiscountWidth, input.DiscountHeight)

	if input.CIVID != "" {
		activity.CIVID = input.CIVID
		activity.CIV = nil
	}
	activity.Activity = input.Activity
	activity.StartLocation = input.StartLocation
	activity.EndLocation = input.EndLocation
	activity.Item = input.Item
	activity.Length = input.Length
	activity.Width = input.Width
	activity.Height = input.Height
	activity.GrossVolume = volumes.Gross
	activity.DiscountLength = input.DiscountLength
	activity.DiscountWidth = input.DiscountWidth
	activity.DiscountHeight = input.DiscountHeight
	activity.DiscountVolume = volumes.Discount
	activity.NetVolume = volumes.Net
	if input.Photo != "" {
		activity.Photo = input.Photo
	}
	activity.Notes = input.Notes
	activity.CreatedByID = actor.ID
	activity.RoleLabel = roleLabel(actor)

	if err := db.Save(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

// SetActivityReportFlag is the single partial update an activity allows:
// flipping the report-generated flag. Volume computation is skipped.
func SetActivityReportFlag(db *gorm.DB, id string, generated bool) (*models.DailyActivity, error) {
	activity, err := GetActivity(db, id, false)
	if err != nil {
		return nil, err
	}

	if err := db.Model(activity).Update("report_generated", generated).Error; err != nil {
		return nil, err
	}
	activity.ReportGenerated = generated
	return activity, nil
}

// ListActivities returns all activities, optionally with CIV and creator.
func ListActivities(db *gorm.DB, preload bool) ([]models.DailyActivity, error) {
	query := db.Order("created_at DESC")
	if preload {
		query = query.Preload("CIV").Preload("CreatedBy")
	}
	var activities []models.DailyActivity
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivity returns one activity by id.
func GetActivity(db *gorm.DB, id string, preload bool) (*models.DailyActivity, error) {
	query := db
	if preload {
		query = query.Preload("CIV").Preload("CreatedBy")
	}
	var activity models.DailyActivity
	if err := query.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Activity not found")
		}
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity removes an activity by id. Activities are independently
// addressable, so deletion does not consult the owning report.
func DeleteActivity(db *gorm.DB, id string) error {
	result := db.Delete(&models.DailyActivity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Activity not found")
	}
	return nil
}

// roleLabel joins the actor's role names into the denormalized snapshot
func roleLabel(actor *models.User) string {
	names := make([]string, 0, len(actor.Roles))
	for _, role := range actor.Roles {
		names = append(names, role.Name)
	}
	return strings.Join(names, ", ")
}
