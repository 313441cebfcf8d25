package payment

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/request"
	"github.com/edusite/edusite-api/pkg/response"
	"github.com/edusite/edusite-api/pkg/stripe"
	"github.com/edusite/edusite-api/pkg/types"
)

// Handler processes payment HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	stripe *stripe.Client
}

// NewHandler constructs a payment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, stripeClient *stripe.Client) *Handler {
	return &Handler{db: db, logger: logger, stripe: stripeClient}
}

// List returns payments filtered by course, lesson, method and payment
// date, ordered by paid_at when requested.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Ordering: c.Query("ordering"),
	}

	if raw := c.Query("course"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course filter", err)
			return
		}
		filters.CourseID = &id
	}

	if raw := c.Query("lesson"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson filter", err)
			return
		}
		filters.LessonID = &id
	}

	if raw := c.Query("method"); raw != "" {
		method := types.PaymentMethod(raw)
		if !validMethod(method) {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "unknown payment method", nil)
			return
		}
		filters.Method = method
	}

	var err error
	if filters.PaidFrom, err = request.ParseRFC3339Ptr(c.Query("paidAfter")); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid paidAfter timestamp", err)
		return
	}
	if filters.PaidTo, err = request.ParseRFC3339Ptr(c.Query("paidBefore")); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid paidBefore timestamp", err)
		return
	}

	payments, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, payments, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single payment.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment id", err)
		return
	}

	p, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load payment")
		return
	}

	response.Success(c, http.StatusOK, p, "", nil)
}

type createRequest struct {
	CourseID *string     `json:"courseId"`
	LessonID *string     `json:"lessonId"`
	Amount   types.Money `json:"amount"`
	Currency string      `json:"currency"`
	Method   string      `json:"method" binding:"required"`
	PaidAt   *time.Time  `json:"paidAt"`
}

// Create records a manual payment (cash or transfer). Stripe payments go
// through the checkout flow instead.
func (h *Handler) Create(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment payload", err)
		return
	}

	method := types.PaymentMethod(req.Method)
	if method != types.PaymentMethodCash && method != types.PaymentMethodTransfer {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "method must be cash or transfer", nil)
		return
	}

	courseID, lessonID, err := h.parseTarget(req.CourseID, req.LessonID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), err)
		return
	}

	paidAt := req.PaidAt
	if paidAt == nil {
		now := time.Now().UTC()
		paidAt = &now
	}

	p, err := Create(h.db, CreateInput{
		UserID:   requester.ID,
		CourseID: courseID,
		LessonID: lessonID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   method,
		Status:   types.PaymentStatusPaid,
		PaidAt:   paidAt,
	})
	if err != nil {
		h.respondError(c, err, "failed to record payment")
		return
	}

	response.Created(c, p, "")
}

type checkoutRequest struct {
	CourseID *string      `json:"courseId"`
	LessonID *string      `json:"lessonId"`
	Amount   *types.Money `json:"amount"`
}

// Checkout opens a hosted payment session. Course checkouts price from
// the course itself; lesson checkouts need an explicit amount.
func (h *Handler) Checkout(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid checkout payload", err)
		return
	}

	courseID, lessonID, err := h.parseTarget(req.CourseID, req.LessonID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), err)
		return
	}

	var name string
	var amount types.Money

	if courseID != nil {
		crs, err := course.Get(h.db, *courseID)
		if err != nil {
			if errors.Is(err, course.ErrCourseNotFound) {
				response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
				return
			}
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
			return
		}
		name = crs.Title
		amount = crs.Price
		if req.Amount != nil {
			amount = *req.Amount
		}
	} else {
		lsn, err := lesson.Get(h.db, *lessonID)
		if err != nil {
			if errors.Is(err, lesson.ErrLessonNotFound) {
				response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Lesson not found.", err)
				return
			}
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load lesson", err)
			return
		}
		if req.Amount == nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "amount is required for lesson checkout", nil)
			return
		}
		name = lsn.Title
		amount = *req.Amount
	}

	if amount.IsZero() || amount.IsNegative() {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, ErrInvalidAmount.Error(), nil)
		return
	}

	ctx := c.Request.Context()

	product, err := h.stripe.CreateProduct(ctx, name)
	if err != nil {
		h.respondStripeError(c, err)
		return
	}

	price, err := h.stripe.CreatePrice(ctx, product.ID, "usd", amount.Cents())
	if err != nil {
		h.respondStripeError(c, err)
		return
	}

	session, err := h.stripe.CreateCheckoutSession(ctx, price.ID)
	if err != nil {
		h.respondStripeError(c, err)
		return
	}

	p, err := Create(h.db, CreateInput{
		UserID:   requester.ID,
		CourseID: courseID,
		LessonID: lessonID,
		Amount:   amount,
		Currency: "usd",
		Method:   types.PaymentMethodStripe,
		Status:   types.PaymentStatusPending,
	})
	if err != nil {
		h.respondError(c, err, "failed to record payment")
		return
	}

	updates := map[string]interface{}{
		"stripe_product_id": product.ID,
		"stripe_price_id":   price.ID,
		"stripe_session_id": session.ID,
		"checkout_url":      session.URL,
	}
	if err := h.db.Model(&Payment{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to attach checkout session", err)
		return
	}

	p.StripeProductID = &product.ID
	p.StripePriceID = &price.ID
	p.StripeSessionID = &session.ID
	p.CheckoutURL = &session.URL

	response.Created(c, p, "")
}

// CheckoutStatus polls the session state and settles the local record
// once the session completes.
func (h *Handler) CheckoutStatus(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "missing session id", nil)
		return
	}

	p, err := GetBySession(h.db, sessionID)
	if err != nil {
		h.respondError(c, err, "failed to load payment")
		return
	}

	session, err := h.stripe.RetrieveSession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondStripeError(c, err)
		return
	}

	if session.PaymentStatus == "paid" && p.Status == types.PaymentStatusPending {
		if err := MarkPaid(h.db, p.ID, time.Now().UTC()); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to settle payment", err)
			return
		}
		p, err = Get(h.db, p.ID)
		if err != nil {
			h.respondError(c, err, "failed to load payment")
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"payment":       p,
		"sessionStatus": session.Status,
		"paymentStatus": session.PaymentStatus,
	}, "", nil)
}

func (h *Handler) parseTarget(courseID, lessonID *string) (*uuid.UUID, *uuid.UUID, error) {
	var cID, lID *uuid.UUID

	if courseID != nil {
		parsed, err := uuid.Parse(*courseID)
		if err != nil {
			return nil, nil, errors.New("invalid course id")
		}
		cID = &parsed
	}
	if lessonID != nil {
		parsed, err := uuid.Parse(*lessonID)
		if err != nil {
			return nil, nil, errors.New("invalid lesson id")
		}
		lID = &parsed
	}

	if err := validateTarget(cID, lID); err != nil {
		return nil, nil, err
	}
	return cID, lID, nil
}

func (h *Handler) respondStripeError(c *gin.Context, err error) {
	if errors.Is(err, stripe.ErrNotConfigured) {
		response.ErrorWithLog(h.logger, c, http.StatusServiceUnavailable, "Card payments are not available.", err)
		return
	}
	response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "Payment provider error.", err)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrPaymentNotFound):
		status = http.StatusNotFound
		message = "Payment not found."
	case errors.Is(err, ErrTargetRequired), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidMethod):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

func validMethod(m types.PaymentMethod) bool {
	switch m {
	case types.PaymentMethodCash, types.PaymentMethodTransfer, types.PaymentMethodStripe:
		return true
	}
	return false
}
