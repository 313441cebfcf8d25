package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrTargetRequired  = errors.New("payment must reference exactly one of course or lesson")
	ErrInvalidAmount   = errors.New("payment amount must be positive")
	ErrInvalidMethod   = errors.New("unknown payment method")
)
