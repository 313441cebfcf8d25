package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/authz"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/types"
)

// User represents a platform account. Email is the login key.
type User struct {
	types.BaseModel

	Email       string         `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	Username    *string        `gorm:"type:varchar(150)" json:"username,omitempty"`
	FirstName   *string        `gorm:"type:varchar(150);column:first_name" json:"firstName,omitempty"`
	LastName    *string        `gorm:"type:varchar(150);column:last_name" json:"lastName,omitempty"`
	Phone       *string        `gorm:"type:varchar(35)" json:"phone,omitempty"`
	City        *string        `gorm:"type:varchar(100)" json:"city,omitempty"`
	Avatar      *string        `gorm:"type:text" json:"avatar,omitempty"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff     bool           `gorm:"type:boolean;not null;default:false;column:is_staff" json:"-"`
	IsSuperuser bool           `gorm:"type:boolean;not null;default:false;column:is_superuser" json:"-"`
	Groups      pq.StringArray `gorm:"type:text[]" json:"-"`
	Active      bool           `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
	LastLogin   *time.Time     `gorm:"column:last_login" json:"lastLogin,omitempty"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// Subject converts the user into an access-control subject.
func (u *User) Subject() authz.Subject {
	return authz.Subject{
		ID:          u.ID,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Groups:      u.Groups,
	}
}

// CreateInput carries data for registering a new user.
type CreateInput struct {
	Email     string
	Password  string
	Username  *string
	FirstName *string
	LastName  *string
	Phone     *string
	City      *string
	Avatar    *string
}

// UpdateInput captures mutable profile fields.
type UpdateInput struct {
	Email     *string
	Password  *string
	Username  *string
	FirstName *string
	LastName  *string
	Phone     *string
	City      *string
	Avatar    *string
}

// List queries users ordered by registration date.
func List(db *gorm.DB, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	if err := db.First(&usr, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		return User{}, err
	}

	usr := User{
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Username:  trimStringPtr(input.Username),
		FirstName: trimStringPtr(input.FirstName),
		LastName:  trimStringPtr(input.LastName),
		Phone:     trimStringPtr(input.Phone),
		City:      trimStringPtr(input.City),
		Avatar:    trimStringPtr(input.Avatar),
		Password:  string(hashedPassword),
		Active:    true,
	}

	if err := db.Create(&usr).Error; err != nil {
		if isUniqueViolation(err) {
			return usr, ErrEmailTaken
		}
		return usr, err
	}

	return usr, nil
}

// Update modifies an existing user profile.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	usr, err := Get(db, id)
	if err != nil {
		return usr, err
	}

	updates := map[string]interface{}{}

	if input.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*input.Email))
		if trimmed == "" {
			return usr, errors.New("email cannot be empty")
		}
		updates["email"] = trimmed
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return usr, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), 10)
		if err != nil {
			return usr, err
		}
		updates["password"] = string(hashedPassword)
	}

	if input.Username != nil {
		updates["username"] = strings.TrimSpace(*input.Username)
	}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*input.Avatar)
	}

	if len(updates) > 0 {
		if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return usr, ErrEmailTaken
			}
			return usr, err
		}
	}

	return Get(db, id)
}

// Delete removes a user and everything hanging off the account: owned
// courses with their lessons and subscriptions, the user's own
// subscriptions, lessons, and payments. Runs as one transaction so a
// partial cascade never survives.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		// Dependents of owned courses go first, while the courses table
		// still holds the ownership rows the subqueries need.
		statements := []struct {
			sql  string
			args []interface{}
		}{
			{"DELETE FROM subscriptions WHERE user_id = ? OR course_id IN (SELECT id FROM courses WHERE owner_id = ?)", []interface{}{id, id}},
			{"DELETE FROM lessons WHERE owner_id = ? OR course_id IN (SELECT id FROM courses WHERE owner_id = ?)", []interface{}{id, id}},
			{"DELETE FROM payments WHERE user_id = ?", []interface{}{id}},
			{"DELETE FROM courses WHERE owner_id = ?", []interface{}{id}},
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt.sql, stmt.args...).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// StampLastLogin records a successful authentication.
func StampLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&User{}).Where("id = ?", id).Update("last_login", at).Error
}

// ComparePassword checks the provided password against the stored hash.
func (u *User) ComparePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func trimStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
