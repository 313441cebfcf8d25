package lesson

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/authz"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/types"
)

// Lesson is a single unit of course material with an optional video.
type Lesson struct {
	types.BaseModel

	CourseID    uuid.UUID  `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Preview     *string    `gorm:"type:text" json:"preview,omitempty"`
	VideoURL    *string    `gorm:"type:text;column:video_url" json:"videoUrl,omitempty"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;column:owner_id;index" json:"ownerId,omitempty"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// ListFilters defines lesson query filters.
type ListFilters struct {
	CourseID *uuid.UUID
}

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	CourseID    uuid.UUID
	Title       string
	Description *string
	Preview     *string
	VideoURL    *string
	OwnerID     uuid.UUID
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Title       *string
	Description *string
	Preview     *string
	VideoURL    *string
}

// List queries lessons with pagination. Subjects that see all content get
// every lesson, everyone else only their own.
func List(db *gorm.DB, subject authz.Subject, filters ListFilters, params pagination.Params) ([]Lesson, int64, error) {
	query := db.Model(&Lesson{})

	if !authz.SeesAllContent(subject) {
		query = query.Where("owner_id = ?", subject.ID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lessons []Lesson
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&lessons).Error; err != nil {
		return nil, 0, err
	}

	return lessons, total, nil
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lsn Lesson
	if err := db.First(&lsn, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return lsn, ErrLessonNotFound
		}
		return lsn, err
	}
	return lsn, nil
}

// Create inserts a new lesson after validating the video link.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	if input.VideoURL != nil {
		if err := ValidateVideoURL(*input.VideoURL); err != nil {
			return Lesson{}, err
		}
	}

	ownerID := input.OwnerID
	lsn := Lesson{
		CourseID:    input.CourseID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Preview:     input.Preview,
		VideoURL:    input.VideoURL,
		OwnerID:     &ownerID,
	}

	if err := db.Create(&lsn).Error; err != nil {
		return lsn, err
	}
	return lsn, nil
}

// Update modifies an existing lesson.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	lsn, err := Get(db, id)
	if err != nil {
		return lsn, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Preview != nil {
		updates["preview"] = *input.Preview
	}
	if input.VideoURL != nil {
		if err := ValidateVideoURL(*input.VideoURL); err != nil {
			return lsn, err
		}
		updates["video_url"] = *input.VideoURL
	}

	if len(updates) > 0 {
		if err := db.Model(&Lesson{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return lsn, err
		}
	}

	return Get(db, id)
}

// Delete removes a lesson.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}
