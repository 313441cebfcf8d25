package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/types"
)

// Payment records a purchase of a course or a lesson, never both.
type Payment struct {
	types.BaseModel

	UserID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"userId"`
	CourseID *uuid.UUID          `gorm:"type:uuid;index" json:"courseId,omitempty"`
	LessonID *uuid.UUID          `gorm:"type:uuid;index" json:"lessonId,omitempty"`
	Amount   types.Money         `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency string              `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Method   types.PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status   types.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidAt   *time.Time          `gorm:"column:paid_at;index" json:"paidAt,omitempty"`

	StripeProductID *string `gorm:"type:varchar(255);column:stripe_product_id" json:"stripeProductId,omitempty"`
	StripePriceID   *string `gorm:"type:varchar(255);column:stripe_price_id" json:"stripePriceId,omitempty"`
	StripeSessionID *string `gorm:"type:varchar(255);column:stripe_session_id;index" json:"stripeSessionId,omitempty"`
	CheckoutURL     *string `gorm:"type:text;column:checkout_url" json:"checkoutUrl,omitempty"`
}

// TableName overrides the default table name.
func (Payment) TableName() string { return "payments" }

// BeforeSave enforces the course-or-lesson invariant at the ORM level.
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	return validateTarget(p.CourseID, p.LessonID)
}

func validateTarget(courseID, lessonID *uuid.UUID) error {
	if (courseID == nil) == (lessonID == nil) {
		return ErrTargetRequired
	}
	return nil
}

// ListFilters defines payment query filters.
type ListFilters struct {
	UserID   *uuid.UUID
	CourseID *uuid.UUID
	LessonID *uuid.UUID
	Method   types.PaymentMethod
	PaidFrom *time.Time
	PaidTo   *time.Time
	Ordering string
}

// CreateInput carries data for recording a payment.
type CreateInput struct {
	UserID   uuid.UUID
	CourseID *uuid.UUID
	LessonID *uuid.UUID
	Amount   types.Money
	Currency string
	Method   types.PaymentMethod
	Status   types.PaymentStatus
	PaidAt   *time.Time
}

// List queries payments with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Payment, int64, error) {
	query := db.Model(&Payment{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}
	if filters.Method != "" {
		query = query.Where("method = ?", filters.Method)
	}
	if filters.PaidFrom != nil {
		query = query.Where("paid_at >= ?", *filters.PaidFrom)
	}
	if filters.PaidTo != nil {
		query = query.Where("paid_at <= ?", *filters.PaidTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filters.Ordering {
	case "paid_at":
		order = "paid_at ASC"
	case "-paid_at":
		order = "paid_at DESC"
	case "amount":
		order = "amount ASC"
	case "-amount":
		order = "amount DESC"
	}

	var payments []Payment
	if err := query.Order(order).Offset(params.Skip).Limit(params.Limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// ListForUser returns every payment made by one user, newest first.
func ListForUser(db *gorm.DB, userID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Get retrieves a payment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Payment, error) {
	var p Payment
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return p, ErrPaymentNotFound
		}
		return p, err
	}
	return p, nil
}

// GetBySession retrieves a payment by its checkout session ID.
func GetBySession(db *gorm.DB, sessionID string) (Payment, error) {
	var p Payment
	if err := db.First(&p, "stripe_session_id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return p, ErrPaymentNotFound
		}
		return p, err
	}
	return p, nil
}

// Create inserts a payment record.
func Create(db *gorm.DB, input CreateInput) (Payment, error) {
	if err := validateTarget(input.CourseID, input.LessonID); err != nil {
		return Payment{}, err
	}
	if input.Amount.IsZero() || input.Amount.IsNegative() {
		return Payment{}, ErrInvalidAmount
	}

	p := Payment{
		UserID:   input.UserID,
		CourseID: input.CourseID,
		LessonID: input.LessonID,
		Amount:   input.Amount,
		Currency: input.Currency,
		Method:   input.Method,
		Status:   input.Status,
		PaidAt:   input.PaidAt,
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}
	if p.Status == "" {
		p.Status = types.PaymentStatusPending
	}

	if err := db.Create(&p).Error; err != nil {
		return p, err
	}
	return p, nil
}

// MarkPaid flips a pending payment to paid and stamps the payment time.
func MarkPaid(db *gorm.DB, id uuid.UUID, at time.Time) error {
	result := db.Model(&Payment{}).
		Where("id = ? AND status = ?", id, types.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":  types.PaymentStatusPaid,
			"paid_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	return nil
}
