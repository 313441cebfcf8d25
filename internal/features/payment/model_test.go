package payment

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Payment{}))
	return db
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestCreateEnforcesTarget(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	courseID := uuid.New()
	lessonID := uuid.New()

	tests := []struct {
		name     string
		courseID *uuid.UUID
		lessonID *uuid.UUID
		wantErr  error
	}{
		{name: "course only", courseID: ptr(courseID)},
		{name: "lesson only", lessonID: ptr(lessonID)},
		{name: "neither", wantErr: ErrTargetRequired},
		{name: "both", courseID: ptr(courseID), lessonID: ptr(lessonID), wantErr: ErrTargetRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(db, CreateInput{
				UserID:   userID,
				CourseID: tt.courseID,
				LessonID: tt.lessonID,
				Amount:   types.NewMoney(49.99),
				Method:   types.PaymentMethodCash,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)

	for _, amount := range []float64{0, -10} {
		_, err := Create(db, CreateInput{
			UserID:   uuid.New(),
			CourseID: ptr(uuid.New()),
			Amount:   types.NewMoney(amount),
			Method:   types.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestCreateDefaults(t *testing.T) {
	db := newTestDB(t)

	p, err := Create(db, CreateInput{
		UserID:   uuid.New(),
		CourseID: ptr(uuid.New()),
		Amount:   types.NewMoney(100),
		Method:   types.PaymentMethodStripe,
	})
	require.NoError(t, err)

	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, types.PaymentStatusPending, p.Status)
	assert.Nil(t, p.PaidAt)
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	courseID := uuid.New()
	lessonID := uuid.New()

	early := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := Create(db, CreateInput{
		UserID: userID, CourseID: ptr(courseID),
		Amount: types.NewMoney(50), Method: types.PaymentMethodCash,
		Status: types.PaymentStatusPaid, PaidAt: &early,
	})
	require.NoError(t, err)

	_, err = Create(db, CreateInput{
		UserID: userID, LessonID: ptr(lessonID),
		Amount: types.NewMoney(20), Method: types.PaymentMethodTransfer,
		Status: types.PaymentStatusPaid, PaidAt: &late,
	})
	require.NoError(t, err)

	params := pagination.Params{Page: 1, Limit: 10}

	t.Run("by course", func(t *testing.T) {
		payments, total, err := List(db, ListFilters{CourseID: ptr(courseID)}, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, payments, 1)
		assert.Equal(t, courseID, *payments[0].CourseID)
	})

	t.Run("by lesson", func(t *testing.T) {
		payments, total, err := List(db, ListFilters{LessonID: ptr(lessonID)}, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, payments, 1)
		assert.Equal(t, lessonID, *payments[0].LessonID)
	})

	t.Run("by method", func(t *testing.T) {
		payments, total, err := List(db, ListFilters{Method: types.PaymentMethodTransfer}, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, payments, 1)
		assert.Equal(t, types.PaymentMethodTransfer, payments[0].Method)
	})

	t.Run("by paid window", func(t *testing.T) {
		from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		payments, total, err := List(db, ListFilters{PaidFrom: &from}, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, payments, 1)
		assert.Equal(t, types.PaymentMethodTransfer, payments[0].Method)
	})

	t.Run("ordering by paid_at", func(t *testing.T) {
		payments, _, err := List(db, ListFilters{Ordering: "paid_at"}, params)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].PaidAt.Before(*payments[1].PaidAt))

		payments, _, err = List(db, ListFilters{Ordering: "-paid_at"}, params)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].PaidAt.After(*payments[1].PaidAt))
	})
}

func TestMarkPaidOnlyTouchesPending(t *testing.T) {
	db := newTestDB(t)

	p, err := Create(db, CreateInput{
		UserID:   uuid.New(),
		CourseID: ptr(uuid.New()),
		Amount:   types.NewMoney(75),
		Method:   types.PaymentMethodStripe,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, MarkPaid(db, p.ID, now))

	settled, err := Get(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)

	firstPaidAt := *settled.PaidAt
	require.NoError(t, MarkPaid(db, p.ID, now.Add(time.Hour)))

	settled, err = Get(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt.Unix(), settled.PaidAt.Unix())
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()

	_, err := Create(db, CreateInput{
		UserID: userID, CourseID: ptr(uuid.New()),
		Amount: types.NewMoney(10), Method: types.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = Create(db, CreateInput{
		UserID: uuid.New(), CourseID: ptr(uuid.New()),
		Amount: types.NewMoney(10), Method: types.PaymentMethodCash,
	})
	require.NoError(t, err)

	payments, err := ListForUser(db, userID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, userID, payments[0].UserID)
}
