package course

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/authz"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/types"
)

// Course groups lessons under an owner. LastNotificationSentAt throttles
// subscriber update emails.
type Course struct {
	types.BaseModel

	Title                  string      `gorm:"type:varchar(255);not null" json:"title"`
	Preview                *string     `gorm:"type:text" json:"preview,omitempty"`
	Description            *string     `gorm:"type:text" json:"description,omitempty"`
	Price                  types.Money `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	OwnerID                *uuid.UUID  `gorm:"type:uuid;column:owner_id;index" json:"ownerId,omitempty"`
	LastNotificationSentAt *time.Time  `gorm:"column:last_notification_sent_at" json:"-"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// WithLessonsCount is the list/detail representation carrying the
// number of lessons attached to the course.
type WithLessonsCount struct {
	Course
	LessonsCount int64 `json:"lessonsCount"`
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title       string
	Preview     *string
	Description *string
	Price       types.Money
	OwnerID     uuid.UUID
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title       *string
	Preview     *string
	Description *string
	Price       *types.Money
}

// List queries courses with pagination. Subjects that see all content get
// the full catalog, everyone else only their own courses.
func List(db *gorm.DB, subject authz.Subject, params pagination.Params) ([]WithLessonsCount, int64, error) {
	query := db.Model(&Course{})

	if !authz.SeesAllContent(subject) {
		query = query.Where("owner_id = ?", subject.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	result := make([]WithLessonsCount, 0, len(courses))
	for _, crs := range courses {
		count, err := lessonsCount(db, crs.ID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, WithLessonsCount{Course: crs, LessonsCount: count})
	}

	return result, total, nil
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	if err := db.First(&crs, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// GetWithLessonsCount retrieves a course along with its lesson count.
func GetWithLessonsCount(db *gorm.DB, id uuid.UUID) (WithLessonsCount, error) {
	crs, err := Get(db, id)
	if err != nil {
		return WithLessonsCount{}, err
	}

	count, err := lessonsCount(db, id)
	if err != nil {
		return WithLessonsCount{}, err
	}

	return WithLessonsCount{Course: crs, LessonsCount: count}, nil
}

// Create inserts a new course.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if input.Price.IsNegative() {
		return Course{}, ErrInvalidPrice
	}

	ownerID := input.OwnerID
	crs := Course{
		Title:       strings.TrimSpace(input.Title),
		Preview:     input.Preview,
		Description: input.Description,
		Price:       input.Price,
		OwnerID:     &ownerID,
	}

	if err := db.Create(&crs).Error; err != nil {
		return crs, err
	}
	return crs, nil
}

// Update modifies an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	crs, err := Get(db, id)
	if err != nil {
		return crs, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Preview != nil {
		updates["preview"] = *input.Preview
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return crs, ErrInvalidPrice
		}
		updates["price"] = *input.Price
	}

	if len(updates) > 0 {
		if err := db.Model(&Course{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return crs, err
		}
	}

	return Get(db, id)
}

// Delete removes a course together with its lessons and subscriptions.
// Dependents are cleared by table to keep the package free of upward
// imports; payments survive as purchase history.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Course{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}

		if err := tx.Exec("DELETE FROM lessons WHERE course_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM subscriptions WHERE course_id = ?", id).Error
	})
}

// ClaimNotificationSlot atomically stamps the course's notification time
// when the previous send is older than the window. Returns false when
// another sender already claimed the slot or the course is inside the
// quiet window.
func ClaimNotificationSlot(db *gorm.DB, id uuid.UUID, now time.Time, window time.Duration) (bool, error) {
	cutoff := now.Add(-window)

	result := db.Model(&Course{}).
		Where("id = ? AND (last_notification_sent_at IS NULL OR last_notification_sent_at < ?)", id, cutoff).
		Update("last_notification_sent_at", now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func lessonsCount(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := db.Table("lessons").Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
