package subscription

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/pkg/types"
)

// Subscription links a user to a course they follow. The composite
// unique index backs the toggle's atomicity.
type Subscription struct {
	types.BaseModel

	UserID   uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_subscriptions_user_course,priority:1" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_subscriptions_user_course,priority:2;index" json:"courseId"`
}

// TableName overrides the default table name.
func (Subscription) TableName() string { return "subscriptions" }

// Exists reports whether a user follows a course.
func Exists(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Subscription{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Toggle flips the subscription state for a user and course and returns
// the resulting state message. A concurrent insert racing the existence
// check trips the unique index and is settled as a removal.
func Toggle(db *gorm.DB, userID, courseID uuid.UUID) (string, error) {
	var message string

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&Subscription{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			message = MessageRemoved
			return nil
		}

		sub := Subscription{UserID: userID, CourseID: courseID}
		if err := tx.Create(&sub).Error; err != nil {
			if isUniqueViolation(err) {
				if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
					Delete(&Subscription{}).Error; err != nil {
					return err
				}
				message = MessageRemoved
				return nil
			}
			return err
		}

		message = MessageAdded
		return nil
	})

	return message, err
}

// SubscriberIDs returns the user IDs following a course.
func SubscriberIDs(db *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&Subscription{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// SubscriberEmails returns the email addresses of a course's followers.
// Accounts without an address are skipped so the mailer never sees an
// empty recipient.
func SubscriberEmails(db *gorm.DB, courseID uuid.UUID) ([]string, error) {
	var emails []string
	err := db.Table("subscriptions").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("subscriptions.course_id = ? AND users.email <> ''", courseID).
		Pluck("users.email", &emails).Error
	return emails, err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
